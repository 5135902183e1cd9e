// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/tickertock/internal/config"
	"github.com/aristath/tickertock/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens state.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// state.db - the AppState snapshot, durable so a crash never loses an acknowledged change
	stateDB, err := database.New(database.Config{
		Path:    cfg.StatePath(),
		Profile: database.ProfileDurable,
		Name:    "state",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state database: %w", err)
	}

	if err := stateDB.Migrate(); err != nil {
		stateDB.Close()
		return nil, fmt.Errorf("failed to migrate state database: %w", err)
	}
	container.StateDB = stateDB

	log.Info().Str("path", stateDB.Path()).Msg("State database initialized")

	return container, nil
}

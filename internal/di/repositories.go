// Package di provides dependency injection for repository implementations.
package di

import (
	"fmt"

	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the repositories over the opened databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.StateDB == nil {
		return fmt.Errorf("container has no state database")
	}

	container.StateRepo = state.NewRepository(container.StateDB.Conn(), log)

	log.Info().Msg("Repositories initialized")
	return nil
}

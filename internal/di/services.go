// Package di provides dependency injection for service implementations.
package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/tickertock/internal/clients/alphavantage"
	"github.com/aristath/tickertock/internal/clients/groq"
	"github.com/aristath/tickertock/internal/config"
	"github.com/aristath/tickertock/internal/modules/watchlist"
	"github.com/aristath/tickertock/internal/reliability"
	"github.com/rs/zerolog"
)

// InitializeServices creates the clients and services and restores the saved state
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.StateRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}
	if len(cfg.AlphaVantage.APIKeys) == 0 {
		return fmt.Errorf("at least one AlphaVantage API key is required")
	}

	// Clients
	container.KeyRotator = alphavantage.NewKeyRotator(cfg.AlphaVantage.APIKeys)
	container.AlphaVantageClient = alphavantage.NewClient(
		cfg.AlphaVantage.BaseURL,
		container.KeyRotator,
		&http.Client{Timeout: cfg.RequestTimeout},
		log,
	)
	container.GroqClient = groq.NewClient(groq.Config{
		APIKey:  cfg.Groq.APIKey,
		BaseURL: cfg.Groq.BaseURL,
		Model:   cfg.Groq.Model,
	}, nil, log)
	if cfg.Groq.APIKey == "" {
		log.Warn().Msg("GROQ_API_KEY not set - summaries will be unavailable")
	}

	// Services
	container.Cache = watchlist.NewSymbolCache()
	container.Orchestrator = watchlist.NewOrchestrator(
		container.AlphaVantageClient,
		container.AlphaVantageClient,
		container.Cache,
		log,
	)
	container.WatchlistService = watchlist.NewService(
		container.Orchestrator,
		container.Cache,
		container.StateRepo,
		container.GroqClient,
		cfg.MaxWatchlistSize,
		log,
	)
	container.WatchlistService.Restore()

	if cfg.Backup.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		r2Client, err := reliability.NewR2Client(ctx,
			cfg.Backup.AccountID,
			cfg.Backup.AccessKeyID,
			cfg.Backup.SecretAccessKey,
			cfg.Backup.Bucket,
			log,
		)
		if err != nil {
			return fmt.Errorf("failed to create R2 client: %w", err)
		}
		container.R2Client = r2Client
		container.BackupService = reliability.NewR2BackupService(r2Client, container.StateRepo, log)
	} else {
		log.Info().Msg("R2 backup not configured")
	}

	log.Info().Int("api_keys", container.KeyRotator.Size()).Msg("Services initialized")
	return nil
}

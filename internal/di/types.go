/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/aristath/tickertock/internal/clients/alphavantage"
	"github.com/aristath/tickertock/internal/clients/groq"
	"github.com/aristath/tickertock/internal/database"
	"github.com/aristath/tickertock/internal/modules/state"
	"github.com/aristath/tickertock/internal/modules/watchlist"
	"github.com/aristath/tickertock/internal/reliability"
	"github.com/aristath/tickertock/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: a single durable state.db holding the AppState snapshot
 * - Clients: AlphaVantage (quotes, news) behind a shared key rotator, Groq (digests), R2 (backups)
 * - Repositories: the snapshot store
 * - Services: symbol cache, fetch orchestrator and the watchlist service
 * - Scheduler: cron jobs for price refresh, WAL maintenance and backups
 */
type Container struct {
	// Databases
	StateDB *database.DB // AppState snapshot (durable profile)

	// Clients - External API integrations
	KeyRotator         *alphavantage.KeyRotator // Shared by every AlphaVantage request
	AlphaVantageClient *alphavantage.Client     // Quotes and news
	GroqClient         *groq.Client             // Digest generation
	R2Client           *reliability.R2Client    // nil when backups are not configured

	// Repositories - Data access layer
	StateRepo *state.Repository // Snapshot persistence

	// Services - Business logic layer
	Cache            *watchlist.SymbolCache       // Latest quote and news per symbol
	Orchestrator     *watchlist.Orchestrator      // Add and refresh fetch sequencing
	WatchlistService *watchlist.Service           // Owns the AppState
	BackupService    *reliability.R2BackupService // nil when backups are not configured
	Scheduler        *scheduler.Scheduler         // Cron runner for background jobs
}

// JobInstances holds job instances for manual triggering
type JobInstances struct {
	RefreshPrices       scheduler.Job
	CheckWALCheckpoints scheduler.Job
	Maintenance         scheduler.Job
	Backup              scheduler.Job // nil when backups are not configured
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c.StateDB != nil {
		return c.StateDB.Close()
	}
	return nil
}

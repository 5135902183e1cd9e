// Package di provides dependency injection for scheduler jobs.
package di

import (
	"fmt"

	"github.com/aristath/tickertock/internal/config"
	"github.com/aristath/tickertock/internal/reliability"
	"github.com/aristath/tickertock/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers every background job.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.WatchlistService == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	container.Scheduler = scheduler.New(log)
	instances := &JobInstances{}

	// Price refresh over the watchlist
	instances.RefreshPrices = scheduler.NewRefreshPricesJob(container.WatchlistService, cfg.RequestTimeout*2, log)
	if cfg.RefreshSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.RefreshSchedule, instances.RefreshPrices); err != nil {
			return nil, fmt.Errorf("failed to register refresh_prices job: %w", err)
		}
	} else {
		log.Info().Msg("Background price refresh disabled")
	}

	// WAL growth check
	instances.CheckWALCheckpoints = scheduler.NewCheckWALCheckpointsJob(log, container.StateDB)
	if err := container.Scheduler.AddJob("@hourly", instances.CheckWALCheckpoints); err != nil {
		return nil, fmt.Errorf("failed to register check_wal_checkpoints job: %w", err)
	}

	// Integrity check and VACUUM
	instances.Maintenance = reliability.NewMaintenanceJob(cfg.DataDir, log, container.StateDB)
	if cfg.MaintenanceSchedule != "" {
		if err := container.Scheduler.AddJob(cfg.MaintenanceSchedule, instances.Maintenance); err != nil {
			return nil, fmt.Errorf("failed to register maintenance job: %w", err)
		}
	}

	// Off-device snapshot backup
	if container.BackupService != nil {
		instances.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.Retain, log)
		if err := container.Scheduler.AddJob(cfg.Backup.Schedule, instances.Backup); err != nil {
			return nil, fmt.Errorf("failed to register r2_backup job: %w", err)
		}
	}

	log.Info().Int("jobs", container.Scheduler.EntryCount()).Msg("Jobs registered")
	return instances, nil
}

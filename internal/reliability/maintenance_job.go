package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/tickertock/internal/database"
)

const (
	// criticalFreeBytes halts maintenance; writes would start failing below this
	criticalFreeBytes = 100 * 1024 * 1024
	lowFreeBytes      = 1024 * 1024 * 1024
)

// MaintenanceJob checks integrity, reclaims space and watches free disk
// for the given databases
type MaintenanceJob struct {
	databases []*database.DB
	dataDir   string
	freeBytes func(path string) (uint64, error)
	log       zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(dataDir string, log zerolog.Logger, databases ...*database.DB) *MaintenanceJob {
	return &MaintenanceJob{
		databases: databases,
		dataDir:   dataDir,
		freeBytes: diskFree,
		log:       log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting maintenance")
	startTime := time.Now()

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, db := range j.databases {
		if db == nil {
			continue
		}

		if err := db.IntegrityCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed, skipping VACUUM")
			return err
		}

		if err := j.vacuumDatabase(db); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("VACUUM failed")
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Maintenance completed")

	return nil
}

// checkDiskSpace fails when the data directory is almost out of space
func (j *MaintenanceJob) checkDiskSpace() error {
	free, err := j.freeBytes(j.dataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("dir", j.dataDir).Msg("Failed to read disk usage")
		return nil
	}

	availableMB := float64(free) / 1024 / 1024
	j.log.Debug().Float64("available_mb", availableMB).Msg("Disk space check")

	if free < criticalFreeBytes {
		j.log.Error().Float64("available_mb", availableMB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("only %.1f MB free in %s", availableMB, j.dataDir)
	}
	if free < lowFreeBytes {
		j.log.Warn().Float64("available_mb", availableMB).Msg("Disk space running low")
	}
	return nil
}

// vacuumDatabase performs VACUUM on a database
func (j *MaintenanceJob) vacuumDatabase(db *database.DB) error {
	before, err := db.GetStats()
	if err != nil {
		return err
	}

	if _, err := db.Conn().Exec("VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	after, err := db.GetStats()
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", db.Name()).
		Int64("size_before_bytes", before.SizeBytes).
		Int64("size_after_bytes", after.SizeBytes).
		Msg("VACUUM completed")

	return nil
}

func diskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

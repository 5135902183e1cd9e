package scheduler

import (
	"fmt"

	"github.com/aristath/tickertock/internal/database"
	"github.com/rs/zerolog"
)

// walWarnBytes is the WAL size above which a checkpoint is forced
const walWarnBytes = 4 * 1024 * 1024

// CheckWALCheckpointsJob keeps the WAL files of the given databases bounded
type CheckWALCheckpointsJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(log zerolog.Logger, databases ...*database.DB) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		databases: databases,
		log:       log.With().Str("job", "check_wal_checkpoints").Logger(),
	}
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run checkpoints every database whose WAL grew past walWarnBytes
func (j *CheckWALCheckpointsJob) Run() error {
	var failed []string

	for _, db := range j.databases {
		if db == nil {
			continue
		}

		stats, err := db.GetStats()
		if err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
			failed = append(failed, db.Name())
			continue
		}

		if stats.WALSizeBytes < walWarnBytes {
			continue
		}

		j.log.Info().
			Str("database", db.Name()).
			Int64("wal_bytes", stats.WALSizeBytes).
			Msg("WAL above threshold, forcing checkpoint")

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			failed = append(failed, db.Name())
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("WAL maintenance failed for: %v", failed)
	}
	return nil
}

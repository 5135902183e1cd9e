package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob uploads a snapshot backup and prunes old ones
type BackupJob struct {
	service *R2BackupService
	keep    int
	timeout time.Duration
	log     zerolog.Logger
}

// NewBackupJob creates a backup job keeping the newest keep backups
func NewBackupJob(service *R2BackupService, keep int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		keep:    keep,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "r2_backup").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "r2_backup"
}

// Run executes the backup
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if _, err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	// Rotation failure does not fail the backup that just succeeded
	if _, err := j.service.RotateOldBackups(ctx, j.keep); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

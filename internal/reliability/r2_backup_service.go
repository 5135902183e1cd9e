// Package reliability backs the state snapshot up to Cloudflare R2.
package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	backupPrefix    = "tickertock-backup-"
	backupSuffix    = ".tar.gz"
	timestampLayout = "2006-01-02-150405"
	snapshotName    = "app_state.json"
	metadataName    = "backup-metadata.json"
)

// ObjectStore is the bucket surface the backup service needs
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64) error
	List(ctx context.Context, prefix string) ([]types.Object, error)
	Delete(ctx context.Context, key string) error
}

// SnapshotSource returns the persisted snapshot bytes
type SnapshotSource interface {
	Raw() ([]byte, error)
}

// R2BackupService manages cloud backups to Cloudflare R2
type R2BackupService struct {
	store    ObjectStore
	snapshot SnapshotSource
	now      func() time.Time
	log      zerolog.Logger
}

// BackupMetadata contains metadata about a backup
type BackupMetadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
}

// BackupInfo represents information about a backup stored in R2
type BackupInfo struct {
	Filename  string    `json:"filename"`
	Timestamp time.Time `json:"timestamp"`
	SizeBytes int64     `json:"size_bytes"`
	AgeHours  int64     `json:"age_hours"`
}

// NewR2BackupService creates a new R2 backup service
func NewR2BackupService(store ObjectStore, snapshot SnapshotSource, log zerolog.Logger) *R2BackupService {
	return &R2BackupService{
		store:    store,
		snapshot: snapshot,
		now:      time.Now,
		log:      log.With().Str("service", "r2_backup").Logger(),
	}
}

// CreateAndUploadBackup archives the current snapshot and uploads it to R2.
// It returns the object key.
func (s *R2BackupService) CreateAndUploadBackup(ctx context.Context) (string, error) {
	startTime := s.now()

	data, err := s.snapshot.Raw()
	if err != nil {
		return "", fmt.Errorf("failed to read snapshot: %w", err)
	}

	metadata := BackupMetadata{
		Timestamp: startTime.UTC(),
		Version:   "1",
		SizeBytes: int64(len(data)),
		Checksum:  fmt.Sprintf("sha256:%x", sha256.Sum256(data)),
	}

	archive, err := createArchive(data, metadata)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}

	// Suffix keeps two backups in the same second from colliding
	key := fmt.Sprintf("%s%s-%s%s", backupPrefix, startTime.UTC().Format(timestampLayout), uuid.NewString()[:8], backupSuffix)

	if err := s.store.Upload(ctx, key, bytes.NewReader(archive), int64(len(archive))); err != nil {
		return "", fmt.Errorf("failed to upload to r2: %w", err)
	}

	s.log.Info().
		Str("archive", key).
		Int("size_bytes", len(archive)).
		Dur("duration", s.now().Sub(startTime)).
		Msg("R2 backup completed successfully")

	return key, nil
}

// ListBackups lists all backups stored in R2, newest first
func (s *R2BackupService) ListBackups(ctx context.Context) ([]BackupInfo, error) {
	objects, err := s.store.List(ctx, backupPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list r2 backups: %w", err)
	}

	backups := make([]BackupInfo, 0, len(objects))
	now := s.now()

	for _, obj := range objects {
		if obj.Key == nil {
			continue
		}

		filename := *obj.Key
		timestamp, ok := parseBackupTimestamp(filename)
		if !ok {
			s.log.Warn().Str("filename", filename).Msg("Failed to parse timestamp from filename")
			continue
		}

		var sizeBytes int64
		if obj.Size != nil {
			sizeBytes = *obj.Size
		}

		backups = append(backups, BackupInfo{
			Filename:  filename,
			Timestamp: timestamp,
			SizeBytes: sizeBytes,
			AgeHours:  int64(now.Sub(timestamp).Hours()),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// RotateOldBackups deletes everything but the newest keep backups
func (s *R2BackupService) RotateOldBackups(ctx context.Context, keep int) (int, error) {
	backups, err := s.ListBackups(ctx)
	if err != nil {
		return 0, err
	}

	if len(backups) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, backup := range backups[keep:] {
		if err := s.store.Delete(ctx, backup.Filename); err != nil {
			s.log.Error().
				Err(err).
				Str("filename", backup.Filename).
				Msg("Failed to delete old backup")
			continue
		}
		deleted++
	}

	s.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(backups)-deleted).
		Msg("R2 backup rotation completed")

	return deleted, nil
}

// parseBackupTimestamp reads the time out of tickertock-backup-2026-01-08-143022-ab12cd34.tar.gz
func parseBackupTimestamp(filename string) (time.Time, bool) {
	if !strings.HasPrefix(filename, backupPrefix) || !strings.HasSuffix(filename, backupSuffix) {
		return time.Time{}, false
	}
	rest := strings.TrimPrefix(filename, backupPrefix)
	if len(rest) < len(timestampLayout) {
		return time.Time{}, false
	}
	ts, err := time.Parse(timestampLayout, rest[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// createArchive builds a tar.gz holding the snapshot and its metadata
func createArchive(snapshot []byte, metadata BackupMetadata) ([]byte, error) {
	meta, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzipWriter)

	files := []struct {
		name string
		data []byte
	}{
		{snapshotName, snapshot},
		{metadataName, meta},
	}
	for _, f := range files {
		header := &tar.Header{
			Name:    f.name,
			Size:    int64(len(f.data)),
			Mode:    0644,
			ModTime: metadata.Timestamp,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return nil, err
		}
		if _, err := tarWriter.Write(f.data); err != nil {
			return nil, err
		}
	}

	if err := tarWriter.Close(); err != nil {
		return nil, err
	}
	if err := gzipWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

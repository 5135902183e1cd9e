package reliability

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBucket struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleteErr error
}

func newMemoryBucket() *memoryBucket {
	return &memoryBucket{objects: make(map[string][]byte)}
}

func (b *memoryBucket) Upload(_ context.Context, key string, body io.Reader, size int64) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(data)) != size {
		return io.ErrShortWrite
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = data
	return nil
}

func (b *memoryBucket) List(_ context.Context, prefix string) ([]types.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []types.Object
	for key, data := range b.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, types.Object{Key: aws.String(key), Size: aws.Int64(int64(len(data)))})
		}
	}
	return out, nil
}

func (b *memoryBucket) Delete(_ context.Context, key string) error {
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memoryBucket) keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fixedSnapshot struct {
	data []byte
	err  error
}

func (f fixedSnapshot) Raw() ([]byte, error) {
	return f.data, f.err
}

func readArchive(t *testing.T, archive []byte) map[string][]byte {
	t.Helper()
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	require.NoError(t, err)
	tr := tar.NewReader(gz)

	files := make(map[string][]byte)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = data
	}
	return files
}

func TestCreateAndUploadBackup(t *testing.T) {
	bucket := newMemoryBucket()
	snapshot := []byte(`{"watchlist_stocks":["AAPL"]}`)
	svc := NewR2BackupService(bucket, fixedSnapshot{data: snapshot}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2026, 1, 8, 14, 30, 22, 0, time.UTC) }

	key, err := svc.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "tickertock-backup-2026-01-08-143022-"))
	assert.True(t, strings.HasSuffix(key, ".tar.gz"))

	files := readArchive(t, bucket.objects[key])
	assert.Equal(t, snapshot, files[snapshotName])

	var meta BackupMetadata
	require.NoError(t, json.Unmarshal(files[metadataName], &meta))
	assert.Equal(t, int64(len(snapshot)), meta.SizeBytes)
	assert.True(t, strings.HasPrefix(meta.Checksum, "sha256:"))
}

func TestCreateAndUploadBackup_NoSnapshot(t *testing.T) {
	bucket := newMemoryBucket()
	svc := NewR2BackupService(bucket, fixedSnapshot{err: sql.ErrNoRows}, zerolog.Nop())

	_, err := svc.CreateAndUploadBackup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Empty(t, bucket.keys())
}

func TestListAndRotateBackups(t *testing.T) {
	bucket := newMemoryBucket()
	svc := NewR2BackupService(bucket, fixedSnapshot{data: []byte("{}")}, zerolog.Nop())

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return at }
		_, err := svc.CreateAndUploadBackup(context.Background())
		require.NoError(t, err)
	}
	// Foreign objects are ignored
	bucket.objects["tickertock-backup-garbage.tar.gz"] = []byte("x")

	backups, err := svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 5)
	assert.True(t, backups[0].Timestamp.After(backups[4].Timestamp), "newest first")

	deleted, err := svc.RotateOldBackups(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	backups, err = svc.ListBackups(context.Background())
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, base.Add(4*time.Hour), backups[0].Timestamp)
	assert.Equal(t, base.Add(3*time.Hour), backups[1].Timestamp)
}

func TestRotateOldBackups_NothingToDo(t *testing.T) {
	bucket := newMemoryBucket()
	svc := NewR2BackupService(bucket, fixedSnapshot{data: []byte("{}")}, zerolog.Nop())
	_, err := svc.CreateAndUploadBackup(context.Background())
	require.NoError(t, err)

	deleted, err := svc.RotateOldBackups(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestParseBackupTimestamp(t *testing.T) {
	ts, ok := parseBackupTimestamp("tickertock-backup-2026-01-08-143022-ab12cd34.tar.gz")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 1, 8, 14, 30, 22, 0, time.UTC), ts)

	_, ok = parseBackupTimestamp("other-2026-01-08-143022.tar.gz")
	assert.False(t, ok)
	_, ok = parseBackupTimestamp("tickertock-backup-short.tar.gz")
	assert.False(t, ok)
}

func TestBackupJob(t *testing.T) {
	bucket := newMemoryBucket()
	bucket.deleteErr = assert.AnError
	svc := NewR2BackupService(bucket, fixedSnapshot{data: []byte("{}")}, zerolog.Nop())

	job := NewBackupJob(svc, 1, zerolog.Nop())
	assert.Equal(t, "r2_backup", job.Name())

	require.NoError(t, job.Run())
	// Rotation errors are logged, not returned
	require.NoError(t, job.Run())
	assert.Len(t, bucket.keys(), 2)

	failing := NewBackupJob(NewR2BackupService(bucket, fixedSnapshot{err: assert.AnError}, zerolog.Nop()), 1, zerolog.Nop())
	assert.Error(t, failing.Run())
}

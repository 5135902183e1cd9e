package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Persistence operations reported to the ErrorHook.
const (
	OpSave = "save"
	OpLoad = "load"
)

// ErrorHook observes persistence failures. Save never returns them.
type ErrorHook func(op string, err error)

// Repository stores the AppState snapshot as a JSON blob under SnapshotKey.
type Repository struct {
	db       *sql.DB
	log      zerolog.Logger
	mu       sync.Mutex
	hook         ErrorHook
	saveFailures atomic.Int64
	loadFailures atomic.Int64
	now          func() time.Time
}

// NewRepository creates a snapshot repository over db. The app_state table must exist.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "state").Logger(),
		now: time.Now,
	}
}

// SetErrorHook registers hook to be called on every failed Save or unreadable Load.
func (r *Repository) SetErrorHook(hook ErrorHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

// SaveFailures returns how many saves failed since startup.
func (r *Repository) SaveFailures() int64 {
	return r.saveFailures.Load()
}

// LoadFailures returns how many loads found a snapshot they could not read.
func (r *Repository) LoadFailures() int64 {
	return r.loadFailures.Load()
}

// Save overwrites the stored snapshot with s in a single statement, so a reader only
// ever sees the previous or the new snapshot. Nil maps are stored as empty ones.
// Failures are logged and reported to the error hook; the in-memory state stays
// authoritative.
func (r *Repository) Save(s *AppState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(s.Clone())
	if err != nil {
		r.fail(OpSave, fmt.Errorf("failed to marshal state: %w", err))
		return
	}

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO app_state (key, data, updated_at) VALUES (?, ?, ?)",
		SnapshotKey, string(data), r.now().Unix(),
	)
	if err != nil {
		r.fail(OpSave, fmt.Errorf("failed to store state: %w", err))
		return
	}

	r.log.Debug().Int("bytes", len(data)).Msg("Saved state snapshot")
}

// Load returns the stored snapshot. The second value is false when nothing was ever
// saved and also when the stored blob cannot be decoded.
func (r *Repository) Load() (*AppState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.raw()
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.fail(OpLoad, err)
		}
		return nil, false
	}

	var s AppState
	if err := json.Unmarshal(data, &s); err != nil {
		r.fail(OpLoad, fmt.Errorf("failed to decode state: %w", err))
		return nil, false
	}
	s.ensureMaps()

	return &s, true
}

// Raw returns the stored snapshot bytes exactly as persisted, for backups.
// A missing snapshot is reported as sql.ErrNoRows.
func (r *Repository) Raw() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.raw()
}

func (r *Repository) raw() ([]byte, error) {
	var data string
	err := r.db.QueryRow("SELECT data FROM app_state WHERE key = ?", SnapshotKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return []byte(data), nil
}

func (r *Repository) fail(op string, err error) {
	if op == OpSave {
		r.saveFailures.Add(1)
	} else {
		r.loadFailures.Add(1)
	}
	r.log.Error().Err(err).Str("op", op).Msg("State persistence failed")
	if r.hook != nil {
		r.hook(op, err)
	}
}

package state

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE app_state (key TEXT PRIMARY KEY, data TEXT NOT NULL, updated_at INTEGER NOT NULL);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// One connection so every query sees the same in-memory database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoad_NothingSaved(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	s, ok := repo.Load()
	assert.False(t, ok)
	assert.Nil(t, s)
	assert.Zero(t, repo.LoadFailures())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	favoriteOnly := NewAppState()
	favoriteOnly.Watchlist = []string{"TSLA"}
	favoriteOnly.FavoriteSymbol = "TSLA"

	tests := []struct {
		name     string
		snapshot *AppState
	}{
		{name: "empty", snapshot: NewAppState()},
		{name: "populated", snapshot: populated()},
		{name: "favorite only", snapshot: favoriteOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewRepository(setupTestDB(t), zerolog.Nop())

			repo.Save(tt.snapshot)

			loaded, ok := repo.Load()
			require.True(t, ok)
			assert.Equal(t, tt.snapshot, loaded)
			assert.Zero(t, repo.SaveFailures())
		})
	}
}

func TestSave_ZeroValueStoresEmptyMaps(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())
	zero := &AppState{}

	repo.Save(zero)

	data, err := repo.Raw()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")

	loaded, ok := repo.Load()
	require.True(t, ok)
	assert.Equal(t, NewAppState(), loaded)
	assert.Nil(t, zero.Quotes, "the caller's value is not modified")
}

func TestSave_OverwritesPreviousSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	repo.Save(populated())

	second := NewAppState()
	second.Watchlist = []string{"TSLA"}
	repo.Save(second)

	loaded, ok := repo.Load()
	require.True(t, ok)
	assert.Equal(t, []string{"TSLA"}, loaded.Watchlist)
	assert.Empty(t, loaded.Quotes)

	var rows int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM app_state").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestLoad_CorruptBlobIsAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	var hookOps []string
	repo.SetErrorHook(func(op string, err error) {
		hookOps = append(hookOps, op)
		assert.Error(t, err)
	})

	_, err := db.Exec("INSERT INTO app_state (key, data, updated_at) VALUES (?, ?, 0)", SnapshotKey, "{not json")
	require.NoError(t, err)

	s, ok := repo.Load()
	assert.False(t, ok)
	assert.Nil(t, s)
	assert.Equal(t, []string{OpLoad}, hookOps)
	assert.Equal(t, int64(1), repo.LoadFailures())
	assert.Zero(t, repo.SaveFailures())
}

func TestLoad_MissingMapsAreAllocated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	_, err := db.Exec("INSERT INTO app_state (key, data, updated_at) VALUES (?, ?, 0)", SnapshotKey, `{"watchlist_stocks":["AMD"]}`)
	require.NoError(t, err)

	s, ok := repo.Load()
	require.True(t, ok)
	assert.Equal(t, []string{"AMD"}, s.Watchlist)
	assert.NotNil(t, s.Quotes)
	assert.NotNil(t, s.KeptArticles)
}

func TestSave_FailureIsSwallowedAndReported(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	// No schema: every write fails
	repo := NewRepository(db, zerolog.Nop())

	var reported error
	repo.SetErrorHook(func(op string, err error) {
		assert.Equal(t, OpSave, op)
		reported = err
	})

	assert.NotPanics(t, func() { repo.Save(populated()) })
	require.Error(t, reported)
	assert.Contains(t, reported.Error(), "failed to store state")
	assert.Equal(t, int64(1), repo.SaveFailures())
	assert.Zero(t, repo.LoadFailures())
}

func TestRaw(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Raw()
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	repo.Save(populated())

	data, err := repo.Raw()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"watchlist_stocks":["AAPL","NVDA"]`)
}

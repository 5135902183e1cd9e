package di

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/tickertock/internal/config"
	testingpkg "github.com/aristath/tickertock/internal/testing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:             t.TempDir(),
		MaxWatchlistSize:    3,
		RequestTimeout:      5 * time.Second,
		RefreshSchedule:     "@every 15m",
		MaintenanceSchedule: "@weekly",
		AlphaVantage: config.AlphaVantageConfig{
			APIKeys: []string{"key-a", "key-b"},
			BaseURL: "http://127.0.0.1:0",
		},
		Backup: config.BackupConfig{Retain: 7},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.StateDB)
	assert.NotNil(t, container.StateRepo)
	assert.NotNil(t, container.AlphaVantageClient)
	assert.NotNil(t, container.GroqClient)
	assert.NotNil(t, container.Cache)
	assert.NotNil(t, container.Orchestrator)
	assert.NotNil(t, container.WatchlistService)
	assert.Nil(t, container.BackupService, "backup disabled without R2 credentials")
	assert.Equal(t, 2, container.KeyRotator.Size())

	require.NotNil(t, jobs)
	assert.NotNil(t, jobs.RefreshPrices)
	assert.NotNil(t, jobs.CheckWALCheckpoints)
	assert.NotNil(t, jobs.Maintenance)
	assert.Nil(t, jobs.Backup)

	// refresh, WAL check, maintenance
	assert.Equal(t, 3, container.Scheduler.EntryCount())

	assert.FileExists(t, filepath.Join(cfg.DataDir, "state.db"))
	assert.Empty(t, container.WatchlistService.Snapshot().Watchlist)
}

func TestWire_DisabledSchedules(t *testing.T) {
	cfg := testConfig(t)
	cfg.RefreshSchedule = ""
	cfg.MaintenanceSchedule = ""

	container, jobs, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, jobs.RefreshPrices, "job exists for manual runs")
	assert.Equal(t, 1, container.Scheduler.EntryCount())
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.RefreshSchedule = "not a schedule"

	_, _, err := Wire(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestWire_RestoresSavedState(t *testing.T) {
	cfg := testConfig(t)

	first, _, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)

	first.StateRepo.Save(testingpkg.NewStateFixture("NVDA"))
	require.Zero(t, first.StateRepo.SaveFailures())
	require.NoError(t, first.Close())

	second, _, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	snap := second.WatchlistService.Snapshot()
	assert.Equal(t, []string{"NVDA"}, snap.Watchlist)
	assert.Equal(t, "NVDA", snap.FavoriteSymbol)

	q, ok := second.Cache.Quote("NVDA")
	require.True(t, ok, "snapshot seeds the cache")
	assert.Equal(t, 120.50, q.CurrentPrice)
}

func TestInitializeRepositories_RequiresDatabase(t *testing.T) {
	err := InitializeRepositories(&Container{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestInitializeServices_RequiresRepositories(t *testing.T) {
	err := InitializeServices(&Container{}, testConfig(t), zerolog.Nop())
	assert.Error(t, err)
}

func TestRegisterJobs_RequiresServices(t *testing.T) {
	_, err := RegisterJobs(&Container{}, testConfig(t), zerolog.Nop())
	assert.Error(t, err)
}

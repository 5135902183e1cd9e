package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/tickertock/internal/database"
	"github.com/aristath/tickertock/internal/modules/state"
)

// WatchlistStatus exposes the watchlist numbers shown on the status page
type WatchlistStatus interface {
	Snapshot() *state.AppState
	MaxSize() int
}

// CacheStatus reports how many symbols are cached
type CacheStatus interface {
	Len() int
}

// FailureCounter reports swallowed persistence failures
type FailureCounter interface {
	SaveFailures() int64
	LoadFailures() int64
}

// DatabaseStats reports storage statistics
type DatabaseStats interface {
	GetStats() (*database.Stats, error)
}

// JobCounter reports registered background jobs
type JobCounter interface {
	EntryCount() int
}

// SystemStatusResponse is the payload of GET /api/system/status
type SystemStatusResponse struct {
	Status            string          `json:"status"`
	Uptime            string          `json:"uptime"`
	CPUPercent        float64         `json:"cpu_percent"`
	MemoryPercent     float64         `json:"memory_percent"`
	WatchlistSize     int             `json:"watchlist_size"`
	MaxWatchlistSize  int             `json:"max_watchlist_size"`
	FavoriteSymbol    string          `json:"favorite_symbol,omitempty"`
	CachedSymbols     int             `json:"cached_symbols"`
	StateSaveFailures int64           `json:"state_save_failures"`
	StateLoadFailures int64           `json:"state_load_failures"`
	LastStateFailure  *StateFailure   `json:"last_state_failure,omitempty"`
	ScheduledJobs     int             `json:"scheduled_jobs"`
	Database          *database.Stats `json:"database,omitempty"`
	LastChecked       string          `json:"last_checked"`
}

// StateFailure is the most recent persistence error
type StateFailure struct {
	Op    string `json:"op"`
	Error string `json:"error"`
	At    string `json:"at"`
}

// SystemHandlers serves host and application health information
type SystemHandlers struct {
	log       zerolog.Logger
	watchlist WatchlistStatus
	cache     CacheStatus
	failures  FailureCounter
	db        DatabaseStats
	jobs      JobCounter
	startedAt time.Time
	hostStats func() (float64, float64)

	mu          sync.Mutex
	lastFailure *StateFailure
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	watchlist WatchlistStatus,
	cache CacheStatus,
	failures FailureCounter,
	db DatabaseStats,
	jobs JobCounter,
) *SystemHandlers {
	h := &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		watchlist: watchlist,
		cache:     cache,
		failures:  failures,
		db:        db,
		jobs:      jobs,
		startedAt: time.Now(),
	}
	h.hostStats = h.getSystemStats
	return h
}

// RecordStateFailure keeps err as the last persistence failure. It has the
// state.ErrorHook signature.
func (h *SystemHandlers) RecordStateFailure(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastFailure = &StateFailure{
		Op:    op,
		Error: err.Error(),
		At:    time.Now().Format(time.RFC3339),
	}
}

// GetSystemStatusSnapshot collects the current status
func (h *SystemHandlers) GetSystemStatusSnapshot() SystemStatusResponse {
	cpuPercent, memPercent := h.hostStats()
	snap := h.watchlist.Snapshot()

	resp := SystemStatusResponse{
		Status:            "healthy",
		Uptime:            time.Since(h.startedAt).Round(time.Second).String(),
		CPUPercent:        cpuPercent,
		MemoryPercent:     memPercent,
		WatchlistSize:     len(snap.Watchlist),
		MaxWatchlistSize:  h.watchlist.MaxSize(),
		FavoriteSymbol:    snap.FavoriteSymbol,
		CachedSymbols:     h.cache.Len(),
		StateSaveFailures: h.failures.SaveFailures(),
		StateLoadFailures: h.failures.LoadFailures(),
		LastChecked:       time.Now().Format(time.RFC3339),
	}

	h.mu.Lock()
	if h.lastFailure != nil {
		last := *h.lastFailure
		resp.LastStateFailure = &last
	}
	h.mu.Unlock()

	if h.jobs != nil {
		resp.ScheduledJobs = h.jobs.EntryCount()
	}

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get database stats")
		resp.Status = "degraded"
	} else {
		resp.Database = stats
	}

	if resp.StateSaveFailures > 0 || resp.StateLoadFailures > 0 {
		resp.Status = "degraded"
	}

	return resp
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]interface{}{
		"data": h.GetSystemStatusSnapshot(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// getSystemStats returns CPU and RAM usage percentages.
// The CPU sample window is short so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

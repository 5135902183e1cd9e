package scheduler

import (
	"context"
	"time"

	"github.com/aristath/tickertock/internal/domain"
	"github.com/rs/zerolog"
)

// PriceRefresher refreshes quotes for the current watchlist.
type PriceRefresher interface {
	Refresh(ctx context.Context) ([]domain.Quote, error)
}

// RefreshPricesJob refreshes watchlist prices in the background
type RefreshPricesJob struct {
	refresher PriceRefresher
	timeout   time.Duration
	log       zerolog.Logger
}

// NewRefreshPricesJob creates a new RefreshPricesJob. Each run is bounded by timeout.
func NewRefreshPricesJob(refresher PriceRefresher, timeout time.Duration, log zerolog.Logger) *RefreshPricesJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RefreshPricesJob{
		refresher: refresher,
		timeout:   timeout,
		log:       log.With().Str("job", "refresh_prices").Logger(),
	}
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Run executes the refresh
func (j *RefreshPricesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	quotes, err := j.refresher.Refresh(ctx)
	if err != nil {
		return err
	}

	j.log.Info().Int("symbols", len(quotes)).Msg("Prices refreshed")
	return nil
}

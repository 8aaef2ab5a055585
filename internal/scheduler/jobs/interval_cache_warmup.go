package jobs

import (
	"context"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/logger"
)

// IntervalRefresher recomputes and caches the winner interval result
type IntervalRefresher interface {
	RefreshWinnerIntervals(ctx context.Context) (*contracts.WinnerIntervalResult, error)
}

// IntervalCacheWarmupJob keeps the cached interval result fresh
type IntervalCacheWarmupJob struct {
	refresher IntervalRefresher
	logger    *logger.Logger
}

// NewIntervalCacheWarmupJob creates a new cache warmup job
func NewIntervalCacheWarmupJob(refresher IntervalRefresher, log *logger.Logger) *IntervalCacheWarmupJob {
	return &IntervalCacheWarmupJob{
		refresher: refresher,
		logger:    log,
	}
}

// Name returns the job name
func (j *IntervalCacheWarmupJob) Name() string {
	return "interval_cache_warmup"
}

// Schedule returns the cron schedule (every 10 minutes)
func (j *IntervalCacheWarmupJob) Schedule() string {
	return "0 */10 * * * *"
}

// Run recomputes the interval result
func (j *IntervalCacheWarmupJob) Run(ctx context.Context) error {
	result, err := j.refresher.RefreshWinnerIntervals(ctx)
	if err != nil {
		return err
	}

	j.logger.WithFields(map[string]interface{}{
		"min": len(result.Min),
		"max": len(result.Max),
	}).Debug("Winner interval cache refreshed")

	return nil
}

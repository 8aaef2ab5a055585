// Package movies holds the award history use cases: CRUD over the stored
// records, statistics, bulk import and the cached producer interval report.
package movies

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
	"github.com/producerfilm/backend/pkg/redis"
)

// Cache is the subset of the redis cache helper the service relies on
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// UpdateInput carries the replaceable fields of a stored movie
type UpdateInput struct {
	Title     string
	Studios   string
	Producers string
	Winner    string
}

// Service coordinates the repository, the interval engine and the result cache
// ⭐ SSOT: 수상 이력 유스케이스는 여기서만
type Service struct {
	repo        contracts.MovieRepository
	calculator  contracts.IntervalCalculator
	cache       Cache
	metrics     *metrics.Manager
	logger      *logger.Logger
	intervalTTL time.Duration

	// cacheMu orders cache stores against invalidation; generation counts
	// invalidations so a result read before a write is never stored after it
	cacheMu    sync.Mutex
	generation uint64
}

// NewService creates a new movie service.
// metrics may be nil.
func NewService(
	repo contracts.MovieRepository,
	calculator contracts.IntervalCalculator,
	cache Cache,
	m *metrics.Manager,
	log *logger.Logger,
	intervalTTL time.Duration,
) *Service {
	if intervalTTL <= 0 {
		intervalTTL = redis.TTLMedium
	}

	return &Service{
		repo:        repo,
		calculator:  calculator,
		cache:       cache,
		metrics:     m,
		logger:      log,
		intervalTTL: intervalTTL,
	}
}

// ListMovies returns every stored movie
func (s *Service) ListMovies(ctx context.Context) ([]*contracts.Movie, error) {
	return s.repo.GetAll(ctx)
}

// GetMovie returns one movie or contracts.ErrNotFound
func (s *Service) GetMovie(ctx context.Context, id int64) (*contracts.Movie, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByYear returns the movies of one award year
func (s *Service) ListByYear(ctx context.Context, year int) ([]*contracts.Movie, error) {
	return s.repo.GetByYear(ctx, year)
}

// ListWinners returns the winning movies
func (s *Service) ListWinners(ctx context.Context) ([]*contracts.Movie, error) {
	return s.repo.GetWinners(ctx)
}

// CountMovies returns the number of stored movies
func (s *Service) CountMovies(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// Statistics summarizes the stored history (cached for a short TTL)
func (s *Service) Statistics(ctx context.Context) (*contracts.MovieStatistics, error) {
	var cached contracts.MovieStatistics
	if s.cacheGet(ctx, redis.StatisticsKey(), &cached) {
		return &cached, nil
	}

	gen := s.cacheGeneration()
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := summarize(all)
	s.cacheSetIfCurrent(ctx, gen, redis.StatisticsKey(), stats, redis.TTLShort)

	return stats, nil
}

func summarize(all []*contracts.Movie) *contracts.MovieStatistics {
	stats := &contracts.MovieStatistics{TotalMovies: len(all)}
	years := make(map[int]struct{})

	for _, m := range all {
		if m.IsWinner() {
			stats.TotalWinners++
		}
		years[m.Year()] = struct{}{}

		if stats.MinYear == 0 || m.Year() < stats.MinYear {
			stats.MinYear = m.Year()
		}
		if m.Year() > stats.MaxYear {
			stats.MaxYear = m.Year()
		}
	}
	stats.YearsCount = len(years)

	return stats
}

// WinnerIntervals returns the producers with the shortest and longest gap
// between consecutive wins. Served from cache when possible.
func (s *Service) WinnerIntervals(ctx context.Context) (*contracts.WinnerIntervalResult, error) {
	var cached contracts.WinnerIntervalResult
	hit := s.cacheGet(ctx, redis.WinnerIntervalKey(), &cached)
	s.metrics.RecordIntervalCache(hit)
	if hit {
		return contracts.NewWinnerIntervalResult(cached.Min, cached.Max), nil
	}

	return s.RefreshWinnerIntervals(ctx)
}

// RefreshWinnerIntervals recomputes the interval result and stores it in the cache
func (s *Service) RefreshWinnerIntervals(ctx context.Context) (*contracts.WinnerIntervalResult, error) {
	gen := s.cacheGeneration()
	winners, err := s.repo.GetWinners(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.calculator.Calculate(winners)
	s.metrics.ObserveIntervalComputation(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("compute winner intervals: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"winners": len(winners),
		"min":     len(result.Min),
		"max":     len(result.Max),
	}).Debug("Computed winner intervals")

	s.cacheSetIfCurrent(ctx, gen, redis.WinnerIntervalKey(), result, s.intervalTTL)

	return result, nil
}

// CreateMovie validates and stores a new movie
func (s *Service) CreateMovie(ctx context.Context, in contracts.MovieInput) (*contracts.Movie, error) {
	movie, err := contracts.NewMovie(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Add(ctx, movie)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return created, nil
}

// UpdateMovie replaces the mutable fields of a stored movie
func (s *Service) UpdateMovie(ctx context.Context, id int64, in UpdateInput) error {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := movie.Update(in.Title, in.Studios, in.Producers, in.Winner); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, movie); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// DeleteMovie removes a stored movie
func (s *Service) DeleteMovie(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// ImportMovies stores already validated movies in one batch
func (s *Service) ImportMovies(ctx context.Context, movies []*contracts.Movie) (int, error) {
	if len(movies) == 0 {
		return 0, nil
	}

	n, err := s.repo.AddBatch(ctx, movies)
	if err != nil {
		return 0, err
	}

	s.invalidate(ctx)
	return n, nil
}

func (s *Service) invalidate(ctx context.Context) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	if err := s.cache.Delete(ctx, redis.WinnerIntervalKey(), redis.StatisticsKey()); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate movie cache")
	}
}

func (s *Service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	return found
}

func (s *Service) cacheGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// cacheSetIfCurrent stores value unless a write invalidated the cache after gen was taken
func (s *Service) cacheSetIfCurrent(ctx context.Context, gen uint64, key string, value interface{}, ttl time.Duration) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	if s.generation != gen {
		s.logger.WithField("key", key).Debug("Data changed during computation, not caching")
		return
	}
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

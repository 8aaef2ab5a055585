package commands

import (
	"context"
	"fmt"

	"github.com/producerfilm/backend/internal/importer"
	"github.com/producerfilm/backend/internal/intervals"
	"github.com/producerfilm/backend/internal/movies"
	"github.com/producerfilm/backend/internal/scheduler"
	"github.com/producerfilm/backend/internal/scheduler/jobs"
	"github.com/producerfilm/backend/pkg/config"
	"github.com/producerfilm/backend/pkg/database"
	"github.com/producerfilm/backend/pkg/httputil"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/metrics"
	"github.com/producerfilm/backend/pkg/redis"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	metrics  *metrics.Manager
	service  *movies.Service
	importer *importer.Importer
	folder   *importer.FolderProcessor
}

// newApp loads config, connects to Postgres (and Redis when enabled) and
// applies the schema
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisClient := redis.Disabled()
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(cfg)
		if err != nil {
			// The cache is optional; run without it
			log.WithError(err).Warn("Redis unavailable, result cache disabled")
			redisClient = redis.Disabled()
		}
	}

	var m *metrics.Manager
	if cfg.MetricsEnabled {
		m = metrics.NewManager()
	}

	service := movies.NewService(
		movies.NewRepository(db.Pool),
		intervals.NewEngine(),
		redis.NewCache(redisClient, cfg.Cache.Prefix),
		m,
		log,
		cfg.Cache.IntervalTTL,
	)

	imp := importer.New(service, httputil.New(log), m, log)

	return &app{
		cfg:      cfg,
		log:      log,
		db:       db,
		redis:    redisClient,
		metrics:  m,
		service:  service,
		importer: imp,
		folder:   importer.NewFolderProcessor(imp, cfg.Import, log),
	}, nil
}

// newScheduler registers the background jobs
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewImportFolderJob(a.folder, a.cfg.Import.Schedule, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewIntervalCacheWarmupJob(a.service, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis client")
	}
	a.db.Close()
}

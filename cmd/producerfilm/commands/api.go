package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/producerfilm/backend/internal/api"
	"github.com/producerfilm/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- 스키마 적용 (migrate)
- IMPORT_ON_STARTUP=true 이면 import 폴더 처리
- 스케줄러 시작 (import_folder, interval_cache_warmup)
- HTTP API 서버 시작

Endpoints:
  GET    /health                      - Health check
  GET    /metrics                     - Prometheus metrics
  GET    /api/movies                  - 전체 목록 (?year=)
  GET    /api/movies/winners          - 수상작 목록
  GET    /api/movies/statistics       - 통계
  GET    /api/movies/winner-interval  - 프로듀서 수상 간격 (min/max)
  GET    /api/movies/{id}             - 단건 조회
  POST   /api/movies                  - 등록
  PUT    /api/movies/{id}             - 수정
  DELETE /api/movies/{id}             - 삭제
  POST   /api/movies/import           - CSV/HTML 업로드

Example:
  go run ./cmd/producerfilm api
  go run ./cmd/producerfilm api --port 8080 --no-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort        string
	apiNoScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
	apiCmd.Flags().BoolVar(&apiNoScheduler, "no-scheduler", false, "스케줄러 없이 API만 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== producerfilm API Server ===")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Config, logger, database, cache
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// 2. Import pending files before serving
	if a.cfg.Import.OnStartup {
		if _, err := a.folder.Process(ctx); err != nil {
			log.WithError(err).Error("Startup import failed")
		}
	}

	// 3. Background jobs
	if !apiNoScheduler {
		sched, err := a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 4. Handlers and router
	router := api.NewRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(a.db, a.service, log),
		Movies:    handlers.NewMovieHandler(a.service, log),
		Intervals: handlers.NewIntervalHandler(a.service, log),
		Import:    handlers.NewImportHandler(a.importer, log),
	}, a.metrics, rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), a.cfg.RateLimit.Burst), log)

	// 5. Serve until Ctrl+C, then shut down gracefully
	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("Server running on http://localhost:%s", a.cfg.Port))
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	return api.New(a.cfg, log, router).Run(ctx)
}

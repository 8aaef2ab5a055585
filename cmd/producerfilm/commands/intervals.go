package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/producerfilm/backend/internal/contracts"
	"github.com/producerfilm/backend/internal/importer"
	"github.com/producerfilm/backend/internal/intervals"
	"github.com/producerfilm/backend/internal/movies"
	"github.com/producerfilm/backend/pkg/logger"
	"github.com/producerfilm/backend/pkg/redis"
)

// intervalsCmd represents the intervals command
var intervalsCmd = &cobra.Command{
	Use:   "intervals",
	Short: "프로듀서 수상 간격 (min/max) 조회",
	Long: `연속 수상 간격이 가장 짧은/긴 프로듀서를 출력합니다.

--file 을 지정하면 DB 없이 해당 파일만으로 계산합니다.

Example:
  go run ./cmd/producerfilm intervals
  go run ./cmd/producerfilm intervals --format json
  go run ./cmd/producerfilm intervals --file movielist.csv --format yaml`,
	Args: cobra.NoArgs,
	RunE: runIntervals,
}

var (
	intervalsFormat string
	intervalsFile   string
)

func init() {
	rootCmd.AddCommand(intervalsCmd)

	intervalsCmd.Flags().StringVar(&intervalsFormat, "format", "table", "output format (table|json|yaml)")
	intervalsCmd.Flags().StringVar(&intervalsFile, "file", "", "compute from a CSV/HTML file instead of the database")
}

func runIntervals(cmd *cobra.Command, args []string) error {
	switch intervalsFormat {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (table|json|yaml)", intervalsFormat)
	}

	var result *contracts.WinnerIntervalResult
	var err error

	if intervalsFile != "" {
		result, err = intervalsFromFile(cmd.Context(), cmd.ErrOrStderr(), intervalsFile)
	} else {
		result, err = intervalsFromDatabase(cmd.Context())
	}
	if err != nil {
		return err
	}

	return printIntervals(cmd.OutOrStdout(), result, intervalsFormat)
}

func intervalsFromDatabase(ctx context.Context) (*contracts.WinnerIntervalResult, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	return a.service.WinnerIntervals(ctx)
}

// intervalsFromFile loads the file into an in-memory repository and runs the
// same service path the API uses
func intervalsFromFile(ctx context.Context, stderr io.Writer, path string) (*contracts.WinnerIntervalResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	batch, err := importer.Parse(f, importer.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, rowErr := range batch.Errors {
		PrintWarning(stderr, "skipped "+rowErr.Error())
	}

	service := movies.NewService(
		movies.NewMemoryRepository(),
		intervals.NewEngine(),
		redis.NewCache(redis.Disabled(), ""),
		nil,
		logger.NewWithWriter(stderr, "cli"),
		0,
	)

	if _, err := service.ImportMovies(ctx, batch.Movies); err != nil {
		return nil, err
	}

	return service.WinnerIntervals(ctx)
}

func printIntervals(w io.Writer, result *contracts.WinnerIntervalResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	}

	if result.IsEmpty() {
		PrintInfo(w, "No producer has won more than once")
		return nil
	}

	printIntervalTable(w, "MIN", result.Min)
	printIntervalTable(w, "MAX", result.Max)
	return nil
}

func printIntervalTable(w io.Writer, title string, rows []contracts.ProducerInterval) {
	PrintHeader(w, title)

	widths := []int{32, 8, 12, 13}
	PrintTableHeader(w, []string{"PRODUCER", "INTERVAL", "PREVIOUS WIN", "FOLLOWING WIN"}, widths)
	for _, r := range rows {
		PrintTableRow(w, []string{
			r.Producer,
			strconv.Itoa(r.Interval),
			strconv.Itoa(r.PreviousWin),
			strconv.Itoa(r.FollowingWin),
		}, widths)
	}
}

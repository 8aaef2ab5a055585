package commands

import (
	"github.com/spf13/cobra"

	"github.com/producerfilm/backend/pkg/config"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "producerfilm",
	Short: "Golden Raspberry 수상 이력 / 프로듀서 수상 간격 서비스",
	Long: `producerfilm Unified CLI

Worst Picture 수상 이력을 저장하고, 프로듀서별 연속 수상 간격의
최소/최대 값을 계산합니다.

Usage:
  go run ./cmd/producerfilm [command]

Examples:
  go run ./cmd/producerfilm api
  go run ./cmd/producerfilm import file movielist.csv
  go run ./cmd/producerfilm intervals --format yaml
  go run ./cmd/producerfilm test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "override ENV (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, err
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

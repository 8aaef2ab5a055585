package logger_test

import (
	"errors"

	"github.com/producerfilm/backend/pkg/config"
	"github.com/producerfilm/backend/pkg/logger"
)

// Example_basic demonstrates basic logger usage
func Example_basic() {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "console",
	}

	// Create logger (SSOT)
	log := logger.New(cfg)

	log.Debug("This won't appear (level is info)")
	log.Info("Application started")
	log.WithField("file", "movielist.csv").Info("Import started")
}

// Example_withFields demonstrates structured logging with fields
func Example_withFields() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"file":     "movielist.csv",
		"imported": 206,
		"skipped":  0,
	}).Info("Import finished")
}

// Example_withError demonstrates error logging
func Example_withError() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "error",
		LogFormat: "json",
	}

	log := logger.New(cfg)

	err := errors.New("database connection timeout")
	log.WithError(err).
		WithField("movie_id", 42).
		Error("Failed to update movie")
}

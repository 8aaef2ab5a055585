package main

import (
	"os"

	"github.com/producerfilm/backend/cmd/producerfilm/commands"
)

// main is the entry point for the producerfilm CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/producerfilm [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

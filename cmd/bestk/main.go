package main

import (
	"os"

	"github.com/wonny/bestk/backend/cmd/bestk/commands"
)

// main is the entry point for the Best-K CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/bestk [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd enforces the price history retention window once
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "가격 이력 정리",
	Long: `보존기간을 지난 가격 이력을 삭제합니다.

Example:
  go run ./cmd/bestk cleanup
  go run ./cmd/bestk cleanup --days 730`,
	RunE: runCleanup,
}

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "보존기간 (기본: ANALYSIS_RETENTION_DAYS)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	days := cleanupDays
	if days <= 0 {
		days = deps.cfg.Analysis.RetentionDays
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := deps.repo.CleanupOldPrices(context.Background(), cutoff)
	if err != nil {
		return fmt.Errorf("cleanup old prices: %w", err)
	}

	fmt.Printf("✅ Deleted %d price rows older than %s\n", deleted, cutoff.Format("2006-01-02"))
	return nil
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/bestk/backend/internal/analysis"
)

// analyzeCmd runs one best-K batch and prints the result record as JSON
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Best-K 분석 실행",
	Long: `시가총액 상위 종목에 대해 Best-K 분석을 1회 실행합니다.

기간 타입:
  days_3, week_1, month_1, month_3, quarter, half_year, year_1
  custom (--start-date / --end-date 필수, 결과는 저장하지 않음)

결과는 JSON으로 stdout에 출력됩니다.

Example:
  go run ./cmd/bestk analyze --period month_1
  go run ./cmd/bestk analyze --period custom --start-date 2026-01-01 --end-date 2026-03-31
  go run ./cmd/bestk analyze --period week_1 --market KOSDAQ`,
	RunE: runAnalyze,
}

var (
	analyzePeriod    string
	analyzeStartDate string
	analyzeEndDate   string
	analyzeMarket    string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "month_1", "분석 기간 타입")
	analyzeCmd.Flags().StringVar(&analyzeStartDate, "start-date", "", "custom 시작일 (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeEndDate, "end-date", "", "custom 종료일 (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeMarket, "market", "ALL", "시장 필터 (KOSPI|KOSDAQ|ALL)")
}

// analyzeResult is the JSON record printed on stdout
type analyzeResult struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    *analysis.Report `json:"data,omitempty"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	report, err := deps.orchestrator.Run(context.Background(), analysis.RunRequest{
		Period:    analyzePeriod,
		StartDate: analyzeStartDate,
		EndDate:   analyzeEndDate,
		Market:    analyzeMarket,
	})

	result := analyzeResult{Success: err == nil}
	if err != nil {
		result.Message = fmt.Sprintf("Best-K analysis failed: %v", err)
	} else {
		result.Message = "Best-K analysis completed"
		result.Data = report
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return encErr
	}
	return err
}

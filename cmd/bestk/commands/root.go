package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bestk",
	Short: "Best-K 변동성 돌파 분석 엔진",
	Long: `Best-K Unified CLI

KRX 시가총액 상위 종목을 대상으로 변동성 돌파 전략의
최적 K 계수를 백테스트하고 저장합니다.

Usage:
  go run ./cmd/bestk [command]

Examples:
  go run ./cmd/bestk analyze --period month_1
  go run ./cmd/bestk collect --type all
  go run ./cmd/bestk api
  go run ./cmd/bestk scheduler start`,
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

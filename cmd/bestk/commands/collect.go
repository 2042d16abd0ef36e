package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bestk/backend/internal/collector"
)

// collectCmd triggers data collection from the command line
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "데이터 수집 실행",
	Long: `시가총액 스냅샷과 일별 가격 데이터를 수집합니다.

수집 타입:
  market_caps - KRX 시가총액 스냅샷 (실패 시 Naver 랭킹 페이지)
  prices      - 유니버스 종목의 일별 가격
  all         - 시가총액 갱신 후 가격 수집

Example:
  go run ./cmd/bestk collect --type all
  go run ./cmd/bestk collect --type prices --from 2026-01-01 --to 2026-08-31`,
	RunE: runCollect,
}

var (
	collectType string
	collectFrom string
	collectTo   string
)

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringVar(&collectType, "type", "all", "수집 타입 (all|prices|market_caps)")
	collectCmd.Flags().StringVar(&collectFrom, "from", "", "시작일 (YYYY-MM-DD, 기본 30일 전)")
	collectCmd.Flags().StringVar(&collectTo, "to", "", "종료일 (YYYY-MM-DD, 기본 오늘)")
}

func runCollect(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx := context.Background()

	from := time.Now().AddDate(0, 0, -30)
	to := time.Now()
	if collectFrom != "" {
		if from, err = time.Parse("2006-01-02", collectFrom); err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}
	if collectTo != "" {
		if to, err = time.Parse("2006-01-02", collectTo); err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}

	switch collectType {
	case "market_caps":
		count, err := deps.collector.CollectMarketCaps(ctx)
		if err != nil {
			return fmt.Errorf("collect market caps: %w", err)
		}
		fmt.Printf("✅ Market caps collected: %d\n", count)

	case "prices":
		results, err := deps.collector.CollectPrices(ctx, from, to)
		if err != nil {
			return fmt.Errorf("collect prices: %w", err)
		}
		printCollectSummary(results)

	case "all":
		count, err := deps.collector.CollectMarketCaps(ctx)
		if err != nil {
			return fmt.Errorf("collect market caps: %w", err)
		}
		fmt.Printf("✅ Market caps collected: %d\n", count)

		results, err := deps.collector.CollectPrices(ctx, from, to)
		if err != nil {
			return fmt.Errorf("collect prices: %w", err)
		}
		printCollectSummary(results)

	default:
		return fmt.Errorf("invalid --type %q (valid: all, prices, market_caps)", collectType)
	}

	return nil
}

func printCollectSummary(results []collector.FetchResult) {
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	fmt.Printf("✅ Prices collected: %d securities (%d failed)\n", len(results)-failed, failed)
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/bestk/backend/internal/api"
	"github.com/wonny/bestk/backend/internal/api/handlers"
)

// apiCmd starts the HTTP API server
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                  - Health check
  POST /api/analysis/best-k     - Best-K 분석 실행
  GET  /api/analysis/results    - 저장된 분석 결과 조회
  GET  /api/analysis/progress   - 분석 진행 상황 (websocket)
  POST /api/collect             - 데이터 수집 트리거

Example:
  go run ./cmd/bestk api
  go run ./cmd/bestk api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.Close()

	if apiPort != "" {
		deps.cfg.Port = apiPort
	}

	analysisHandler := handlers.NewAnalysisHandler(deps.orchestrator, deps.repo, deps.log)
	collectHandler := handlers.NewCollectHandler(deps.collector, deps.log)
	progressHandler := handlers.NewProgressHandler(deps.tracker, deps.log)

	router := api.NewRouter(analysisHandler, collectHandler, progressHandler, deps.log)
	server := api.New(deps.cfg, deps.log, router)

	go func() {
		if err := server.Start(); err != nil {
			deps.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", deps.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/analysis/best-k")
	fmt.Println("  GET  /api/analysis/results")
	fmt.Println("  GET  /api/analysis/progress")
	fmt.Println("  POST /api/collect")
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/bestk/backend/internal/scheduler"
	"github.com/wonny/bestk/backend/internal/scheduler/jobs"
)

// schedulerCmd manages the cron scheduler
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- data_collection: 매일 16:10 (시가총액 + 가격 수집)
- best_k_analysis: 매일 17:00 (설정된 전 기간 분석)
- maintenance:     일요일 03:00 (가격 이력 보존기간 정리)

Example:
  go run ./cmd/bestk scheduler start
  go run ./cmd/bestk scheduler list
  go run ./cmd/bestk scheduler run best_k_analysis`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// initScheduler wires the dependency graph and registers every job
func initScheduler() (*scheduler.Scheduler, *appDeps, error) {
	deps, err := buildDeps()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(deps.log)

	if err := sched.AddJob(jobs.NewCollectionJob(deps.collector, 7, deps.log)); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewAnalysisJob(deps.orchestrator, deps.cfg.Analysis.Periods, deps.log)); err != nil {
		return nil, nil, err
	}
	if err := sched.AddJob(jobs.NewMaintenanceJob(deps.repo, deps.cfg.Analysis.RetentionDays, deps.log)); err != nil {
		return nil, nil, err
	}

	return sched, deps, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	sched.Start()

	fmt.Println("✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.JobNames() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, deps, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer deps.Close()

	fmt.Printf("Running job: %s\n", jobName)
	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob은 백그라운드로 실행되므로 완료를 기다린다
	fmt.Println("Job started, waiting for completion (Ctrl+C to detach)")
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	return nil
}

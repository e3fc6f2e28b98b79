package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"equityscan/internal/dto"
	"equityscan/internal/repository"
	"equityscan/internal/service"
)

var (
	scanFetchOnly   bool
	scanAnalyzeOnly bool
	scanLimit       int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan cycle and exit",
	Run:   RunScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFetchOnly, "fetch-only", false, "fetch and score without forecasting or allocation")
	scanCmd.Flags().BoolVar(&scanAnalyzeOnly, "analyze-only", false, "forecast and allocate over already persisted results")
	scanCmd.Flags().IntVar(&scanLimit, "limit", 0, "cap the universe size, 0 means no cap")
	scanCmd.MarkFlagsMutuallyExclusive("fetch-only", "analyze-only")
}

func RunScan(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log, appDep.cache)
	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.state, appDep.telegram)

	mode := dto.ScanModeFull
	if scanFetchOnly {
		mode = dto.ScanModeFetchOnly
	}
	if scanAnalyzeOnly {
		mode = dto.ScanModeAnalyzeOnly
	}

	result, err := services.ScanService.Run(ctx, mode, scanLimit)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	if result != nil {
		log.Printf("Scan %s completed with %d recommendations", result.RunDate, len(result.Recommendations))
	}
}

package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"equityscan/internal/repository"
	"equityscan/internal/service"
)

var (
	bigBetsInput  string
	bigBetsAmount float64
)

var bigBetsCmd = &cobra.Command{
	Use:   "bigbets",
	Short: "Run the medium-term screener over a fundamentals table",
	Run:   RunBigBets,
}

func init() {
	bigBetsCmd.Flags().StringVar(&bigBetsInput, "input", "", "path to a screener export (csv or xlsx)")
	bigBetsCmd.Flags().Float64Var(&bigBetsAmount, "amount", 0, "capital to allocate, 0 uses the configured default")
	_ = bigBetsCmd.MarkFlagRequired("input")
}

func RunBigBets(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}
	defer appDep.Close()

	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log, appDep.cache)
	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.state, appDep.telegram)

	result, err := services.BigBetsService.RunFromFile(ctx, bigBetsInput, bigBetsAmount)
	if err != nil {
		log.Fatalf("Big bets failed: %v", err)
	}

	for _, rec := range result.Recommendations {
		log.Printf("#%d %s ROI %d/14 win %.2f alloc %.0f (%s)",
			rec.Rank, rec.Name, rec.ROIScore, rec.WinProbability, rec.Allocation, rec.Reason)
	}
}

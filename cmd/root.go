package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "equityscan",
	Short: "Daily equity scoring, ranking and allocation pipeline",
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(bigBetsCmd)
	rootCmd.AddCommand(migrateCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "baacviz",
	Short: "Bicycle accident dashboard over the French BAAC dataset",
	Long:  "Downloads and caches the ONISR bicycle-accident export, cleans it into an immutable table, and serves filtered aggregations to the dashboard front end.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

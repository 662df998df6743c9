package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/store"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage prepared-table snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Prepare the dataset and save it as a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		table, report, err := loadPrepared(ctx, cfg)
		if err != nil {
			return err
		}

		st, err := store.NewSQLite(cfg.Data.SnapshotPath)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		id, err := st.Save(ctx, table, report)
		if err != nil {
			return err
		}

		zap.L().Info("snapshot saved",
			zap.String("id", id),
			zap.Int("rows", table.Len()),
		)
		fmt.Println(id)
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.NewSQLite(cfg.Data.SnapshotPath)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snaps, err := st.List(ctx)
		if err != nil {
			return err
		}
		for _, s := range snaps {
			fmt.Printf("%s  %s  %d rows\n", s.ID, s.CreatedAt.Format(time.RFC3339), s.RowCount)
		}
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	rootCmd.AddCommand(snapshotCmd)
}

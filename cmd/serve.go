package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/baac"
	"github.com/velodata/baacviz/internal/server"
	"github.com/velodata/baacviz/internal/store"
)

var (
	servePort         int
	serveFromSnapshot bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var (
			table  *baac.Table
			report *baac.ExclusionReport
			err    error
		)
		if serveFromSnapshot {
			st, err := store.NewSQLite(cfg.Data.SnapshotPath)
			if err != nil {
				return err
			}
			var snap *store.Snapshot
			table, report, snap, err = st.LoadLatest(ctx)
			st.Close() //nolint:errcheck
			if err != nil {
				return err
			}
			zap.L().Info("serving from snapshot",
				zap.String("id", snap.ID),
				zap.Int("rows", snap.RowCount),
			)
		} else {
			table, report, err = loadPrepared(ctx, cfg)
			if err != nil {
				return err
			}
		}

		srv := server.New(table, report, server.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srv.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			httpSrv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server",
			zap.Int("port", port),
			zap.Int("rows", table.Len()),
		)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveFromSnapshot, "snapshot", false, "serve the latest saved snapshot instead of re-preparing")
	rootCmd.AddCommand(serveCmd)
}

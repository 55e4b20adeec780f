package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/db"
	"github.com/sbenjam1n/xsdform/internal/metrics"
	"github.com/sbenjam1n/xsdform/internal/queue"
	"github.com/sbenjam1n/xsdform/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Export worker operations",
}

var (
	metricsAddr string
	noStore     bool
)

var workerRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume export jobs and serve /metrics and /healthz",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		var store worker.ExportStore
		if !noStore {
			pool, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			store = db.NewStore(pool)
		}

		addr := metricsAddr
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		m := metrics.New()
		go func() {
			if err := worker.Serve(ctx, addr, worker.Router(m), logger); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()

		w := worker.New(queue.New(rdb), store, m, logger, cfg.OutputDir)
		if err := w.Consume(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info().Msg("worker stopped")
		return nil
	},
}

func init() {
	workerRunCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /metrics and /healthz (default from config)")
	workerRunCmd.Flags().BoolVar(&noStore, "no-store", false, "Write output files only, skip PostgreSQL")
	workerCmd.AddCommand(workerRunCmd)
}

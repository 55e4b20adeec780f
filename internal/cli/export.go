package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/db"
	"github.com/sbenjam1n/xsdform/internal/worker"
)

var (
	exportSchema string
	exportEdits  string
	exportOut    string
	exportStore  bool
	exportWatch  bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Serialize the document built from a schema and optional edit script",
	Long: `Export builds the document, applies the edit script, rebuilds the logical
rules and writes XML to --out or stdout. With --watch it exports again each
time the schema or edit script changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var store *db.Store
		if exportStore {
			pool, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			store = db.NewStore(pool)
		}

		if err := runExport(ctx, store); err != nil {
			if !exportWatch {
				return err
			}
			logger.Error().Err(err).Msg("export failed")
		}
		if !exportWatch {
			return nil
		}

		w, err := worker.NewWatcher([]string{exportSchema, exportEdits}, logger)
		if err != nil {
			return err
		}
		logger.Info().Str("schema", exportSchema).Str("edits", exportEdits).Msg("watching for changes")
		err = w.Run(ctx, func(path string) {
			if err := runExport(ctx, store); err != nil {
				logger.Error().Err(err).Str("trigger", path).Msg("export failed")
			}
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func runExport(ctx context.Context, store *db.Store) error {
	res, err := worker.Export(exportSchema, exportEdits, logger)
	if err != nil {
		return err
	}

	if exportOut == "" {
		fmt.Print(res.XML)
	} else {
		if err := os.WriteFile(exportOut, []byte(res.XML), 0644); err != nil {
			return fmt.Errorf("write %s: %w", exportOut, err)
		}
		logger.Info().
			Str("out", exportOut).
			Int("applied", res.Report.Applied).
			Int("skipped", res.Report.Skipped).
			Int("rules", len(res.Rules)).
			Msg("exported")
	}

	if store != nil {
		e := &db.Export{
			SchemaPath: exportSchema,
			Root:       res.Root,
			XML:        res.XML,
			RuleCount:  len(res.Rules),
		}
		if err := store.SaveExport(ctx, e); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Stored export %s\n", e.ID)
	}
	return nil
}

func init() {
	schemaFlags(exportCmd, &exportSchema, &exportEdits)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportStore, "store", false, "Also store the export in PostgreSQL")
	exportCmd.Flags().BoolVar(&exportWatch, "watch", false, "Re-export whenever the inputs change")
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/config"
	"github.com/sbenjam1n/xsdform/internal/db"
	"github.com/sbenjam1n/xsdform/internal/document"
	"github.com/sbenjam1n/xsdform/internal/editscript"
	"github.com/sbenjam1n/xsdform/internal/logging"
	"github.com/sbenjam1n/xsdform/internal/queue"
	"github.com/sbenjam1n/xsdform/internal/worker"
)

var (
	cfg        *config.Config
	logger     zerolog.Logger
	configFile string
	rootCmd    = &cobra.Command{
		Use:   "xsdform",
		Short: "Schema-driven document editing and XML export",
		Long: `xsdform builds an editable document from an XSD schema, applies YAML
edit scripts to it, keeps its logical rules in sync and exports XML.

Typical session:
  xsdform tree   --schema req.xsd --edits edits.yaml
  xsdform export --schema req.xsd --edits edits.yaml --out req.xml

Stored exports and background jobs need PostgreSQL and Redis:
  xsdform init
  xsdform queue push --schema req.xsd --edits edits.yaml
  xsdform worker run`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(workerCmd)
}

func initConfig() {
	var err error
	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet XSDFORM_DATABASE_URL environment variable", err)
	}
	return pool, nil
}

func connectRedis() (*redis.Client, error) {
	rdb, err := queue.ConnectRedis(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet XSDFORM_REDIS_URL environment variable", err)
	}
	return rdb, nil
}

func projectRoot() string {
	return cfg.ProjectRoot
}

func migrationsDir() string {
	return filepath.Join(projectRoot(), "migrations")
}

// schemaFlags registers --schema and --edits on cmd.
func schemaFlags(cmd *cobra.Command, schema, edits *string) {
	cmd.Flags().StringVar(schema, "schema", "", "XSD schema file")
	cmd.Flags().StringVar(edits, "edits", "", "YAML edit script applied after loading")
	cmd.MarkFlagRequired("schema")
}

func loadDocument(schemaPath, editsPath string) (*document.Document, *editscript.Report, error) {
	return worker.Load(schemaPath, editsPath, logger)
}

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/db"
	"github.com/sbenjam1n/xsdform/internal/queue"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize storage: output directory, PostgreSQL schema, Redis stream",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", cfg.OutputDir, err)
		}
		fmt.Printf("Output directory %s ready\n", cfg.OutputDir)

		fmt.Println("Connecting to PostgreSQL...")
		pool, err := connectDB(ctx)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		fmt.Println("Running migrations...")
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("PostgreSQL schema created")

		fmt.Println("Connecting to Redis...")
		rdb, err := connectRedis()
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer rdb.Close()

		if err := queue.New(rdb).EnsureStreams(ctx); err != nil {
			return fmt.Errorf("redis stream setup failed: %w", err)
		}
		fmt.Println("Redis stream created")

		fmt.Println("\nxsdform initialized.")
		fmt.Println("Next steps:")
		fmt.Println("  1. Run: xsdform export --schema <file.xsd> --store")
		fmt.Println("  2. Run: xsdform worker run")
		return nil
	},
}

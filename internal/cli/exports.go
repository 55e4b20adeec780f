package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/db"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "Stored export management",
}

var exportsLimit int

var exportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent stored exports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		exports, err := db.ListExports(ctx, pool, exportsLimit)
		if err != nil {
			return err
		}
		if len(exports) == 0 {
			fmt.Println("  (none)")
			return nil
		}
		for _, e := range exports {
			fmt.Printf("  %s  %s  root=%s rules=%d  %s\n",
				e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Root, e.RuleCount, e.SchemaPath)
		}
		return nil
	},
}

var exportsShowOut string

var exportsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print or save the XML of a stored export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid export id %q: %w", args[0], err)
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		e, err := db.GetExport(ctx, pool, id)
		if err != nil {
			return err
		}
		if exportsShowOut != "" {
			return os.WriteFile(exportsShowOut, []byte(e.XML), 0644)
		}
		fmt.Print(e.XML)
		return nil
	},
}

func init() {
	exportsListCmd.Flags().IntVar(&exportsLimit, "limit", 20, "Maximum number of exports to list")
	exportsShowCmd.Flags().StringVarP(&exportsShowOut, "out", "o", "", "Write the XML to a file instead of stdout")
	exportsCmd.AddCommand(exportsListCmd)
	exportsCmd.AddCommand(exportsShowCmd)
}

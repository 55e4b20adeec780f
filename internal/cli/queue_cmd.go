package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbenjam1n/xsdform/internal/queue"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Export job queue management",
}

var (
	pushSchema string
	pushEdits  string
	pushOut    string
)

var queuePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Queue an export job for the worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx := context.Background()
		q := queue.New(rdb)
		if err := q.EnsureStreams(ctx); err != nil {
			return err
		}

		job, err := q.PushJob(ctx, queue.ExportJob{
			SchemaPath: pushSchema,
			EditsPath:  pushEdits,
			Output:     pushOut,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Queued job %s\n", job.JobID)
		return nil
	},
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queued and unacknowledged export jobs in Redis",
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		ctx := context.Background()
		length, pending, err := queue.New(rdb).Status(ctx)
		if err != nil {
			return fmt.Errorf("queue status: %w", err)
		}

		fmt.Printf("Queue Status:\n")
		fmt.Printf("  %s: %d entries, %d pending\n", queue.StreamJobs, length, pending)
		return nil
	},
}

func init() {
	schemaFlags(queuePushCmd, &pushSchema, &pushEdits)
	queuePushCmd.Flags().StringVarP(&pushOut, "out", "o", "", "Output file, relative to the worker's output directory")

	queueCmd.AddCommand(queuePushCmd)
	queueCmd.AddCommand(queueStatusCmd)
}

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// StreamJobs is the Redis stream of export jobs (CLI pushes, worker pops).
	StreamJobs = "export_jobs"

	// GroupExporters is the consumer group for export workers.
	GroupExporters = "exporters"
)

// ErrNoJob is returned by ReadJob when the block interval passes without a job.
var ErrNoJob = errors.New("no export job")

// ExportJob is the payload pushed to the export_jobs stream.
type ExportJob struct {
	JobID      string `json:"job_id"`
	SchemaPath string `json:"schema_path"`
	EditsPath  string `json:"edits_path,omitempty"`
	Output     string `json:"output,omitempty"`
}

// Queue manages the Redis stream of export jobs.
type Queue struct {
	client *redis.Client
	block  time.Duration
}

// New creates a Queue from a Redis client.
func New(client *redis.Client) *Queue {
	return &Queue{client: client, block: 5 * time.Second}
}

// ConnectRedis creates a Redis client from a URL.
func ConnectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// EnsureStreams creates the consumer group if it doesn't exist.
func (q *Queue) EnsureStreams(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, StreamJobs, GroupExporters, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("create group %s on %s: %w", GroupExporters, StreamJobs, err)
	}
	return nil
}

// PushJob adds an export job to the stream, assigning a job id when empty.
func (q *Queue) PushJob(ctx context.Context, job ExportJob) (ExportJob, error) {
	if job.JobID == "" {
		job.JobID = uuid.NewString()
	}
	_, err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamJobs,
		Values: job.values(),
	}).Result()
	if err != nil {
		return job, fmt.Errorf("push job: %w", err)
	}
	return job, nil
}

// ReadJob reads one export job for consumer. It returns ErrNoJob when the
// block interval elapses with nothing to read.
func (q *Queue) ReadJob(ctx context.Context, consumer string) (*ExportJob, string, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    GroupExporters,
		Consumer: consumer,
		Streams:  []string{StreamJobs, ">"},
		Count:    1,
		Block:    q.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", ErrNoJob
	}
	if err != nil {
		return nil, "", fmt.Errorf("read job: %w", err)
	}

	for _, stream := range streams {
		for _, msg := range stream.Messages {
			job := jobFromValues(msg.Values)
			return &job, msg.ID, nil
		}
	}
	return nil, "", ErrNoJob
}

// AckJob acknowledges an export job message.
func (q *Queue) AckJob(ctx context.Context, msgID string) error {
	return q.client.XAck(ctx, StreamJobs, GroupExporters, msgID).Err()
}

// Status returns the stream length and the number of delivered but
// unacknowledged jobs.
func (q *Queue) Status(ctx context.Context) (length, pending int64, err error) {
	length, err = q.client.XLen(ctx, StreamJobs).Result()
	if err != nil {
		return 0, 0, err
	}
	summary, err := q.client.XPending(ctx, StreamJobs, GroupExporters).Result()
	if err != nil {
		return length, 0, err
	}
	return length, summary.Count, nil
}

func (j ExportJob) values() map[string]any {
	return map[string]any{
		"job_id":      j.JobID,
		"schema_path": j.SchemaPath,
		"edits_path":  j.EditsPath,
		"output":      j.Output,
	}
}

func jobFromValues(values map[string]any) ExportJob {
	return ExportJob{
		JobID:      getString(values, "job_id"),
		SchemaPath: getString(values, "schema_path"),
		EditsPath:  getString(values, "edits_path"),
		Output:     getString(values, "output"),
	}
}

func getString(values map[string]any, key string) string {
	if v, ok := values[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

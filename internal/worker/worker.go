// Package worker consumes export jobs from the Redis stream, serializes the
// requested documents and stores the results.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sbenjam1n/xsdform/internal/db"
	"github.com/sbenjam1n/xsdform/internal/metrics"
	"github.com/sbenjam1n/xsdform/internal/queue"
)

// ErrOutputPath is returned for a job output that would land outside the
// worker's output directory.
var ErrOutputPath = errors.New("output path outside output directory")

// JobSource delivers export jobs. *queue.Queue implements it.
type JobSource interface {
	EnsureStreams(ctx context.Context) error
	ReadJob(ctx context.Context, consumer string) (*queue.ExportJob, string, error)
	AckJob(ctx context.Context, msgID string) error
}

// ExportStore persists finished exports. *db.Store implements it.
type ExportStore interface {
	SaveExport(ctx context.Context, e *db.Export) error
}

// Worker processes export jobs one at a time.
type Worker struct {
	jobs      JobSource
	store     ExportStore
	metrics   *metrics.Collector
	log       zerolog.Logger
	consumer  string
	outputDir string
	retry     time.Duration
}

// New creates a Worker. store may be nil, in which case exports are only
// written to their output files.
func New(jobs JobSource, store ExportStore, m *metrics.Collector, log zerolog.Logger, outputDir string) *Worker {
	host, _ := os.Hostname()
	return &Worker{
		jobs:      jobs,
		store:     store,
		metrics:   m,
		log:       log.With().Str("component", "worker").Logger(),
		consumer:  fmt.Sprintf("exporter_%s_%d", host, os.Getpid()),
		outputDir: outputDir,
		retry:     time.Second,
	}
}

// Consume blocks on the job stream until ctx is cancelled, processing jobs
// as they arrive. Every delivered job is acknowledged, failed or not.
func (w *Worker) Consume(ctx context.Context) error {
	if err := w.jobs.EnsureStreams(ctx); err != nil {
		return err
	}
	w.log.Info().Str("consumer", w.consumer).Msg("consuming export jobs")

	for {
		job, msgID, err := w.jobs.ReadJob(ctx, w.consumer)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, queue.ErrNoJob) {
				continue
			}
			w.log.Warn().Err(err).Msg("job read failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.retry):
			}
			continue
		}

		if _, err := w.Process(ctx, job); err != nil {
			w.log.Error().Err(err).Str("job_id", job.JobID).Msg("export failed")
		}
		if err := w.jobs.AckJob(ctx, msgID); err != nil {
			w.log.Warn().Err(err).Str("msg_id", msgID).Msg("ack failed")
		}
	}
}

// Process runs one job: export, optional file write, store.
func (w *Worker) Process(ctx context.Context, job *queue.ExportJob) (*db.Export, error) {
	w.metrics.JobsInFlight.Inc()
	defer w.metrics.JobsInFlight.Dec()

	start := time.Now()
	e, err := w.process(ctx, job)
	if err != nil {
		w.metrics.RecordExport(metrics.StatusFailed, time.Since(start), 0)
		return nil, err
	}
	w.metrics.RecordExport(metrics.StatusOK, time.Since(start), e.RuleCount)
	w.log.Info().
		Str("job_id", job.JobID).
		Str("root", e.Root).
		Int("rules", e.RuleCount).
		Dur("took", time.Since(start)).
		Msg("export done")
	return e, nil
}

func (w *Worker) process(ctx context.Context, job *queue.ExportJob) (*db.Export, error) {
	if job.SchemaPath == "" {
		return nil, fmt.Errorf("job %s: no schema path", job.JobID)
	}
	res, err := Export(job.SchemaPath, job.EditsPath, w.log)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", job.JobID, err)
	}

	if job.Output != "" {
		path, err := w.outputPath(job.Output)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.JobID, err)
		}
		if err := writeFile(path, res.XML); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.JobID, err)
		}
	}

	e := &db.Export{
		JobID:      job.JobID,
		SchemaPath: job.SchemaPath,
		Root:       res.Root,
		XML:        res.XML,
		RuleCount:  len(res.Rules),
	}
	if w.store != nil {
		if err := w.store.SaveExport(ctx, e); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.JobID, err)
		}
	}
	return e, nil
}

// outputPath places a job's output file under the output directory. Queued
// jobs name relative paths only; anything reaching outside is refused.
func (w *Worker) outputPath(out string) (string, error) {
	if filepath.IsAbs(out) {
		return "", fmt.Errorf("%w: %s is absolute", ErrOutputPath, out)
	}
	dir := w.outputDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, out)
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s leaves %s", ErrOutputPath, out, dir)
	}
	return path, nil
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

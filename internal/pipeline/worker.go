package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Worker processes a single document job.
type Worker struct {
	runner  Runner
	log     *slog.Logger
	tempDir string
}

func NewWorker(runner Runner, log *slog.Logger, tempDir string) *Worker {
	return &Worker{
		runner:  runner,
		log:     log,
		tempDir: tempDir,
	}
}

// Process writes the upload to a temp file and runs the pipeline on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID)
	start := time.Now()

	job.SetStatus(StatusProcessing, "staging")
	path, err := w.stage(job)
	if err != nil {
		log.Error("stage upload failed", "error", err)
		job.Fail("staging", err)
		return
	}
	defer os.RemoveAll(filepath.Dir(path))

	var phase string
	res, err := w.runner.RunWithProgress(ctx, path, func(stage string) {
		phase = stage
		job.SetPhase(stage)
	})
	if err != nil {
		log.Error("extraction failed", "phase", phase, "error", err)
		job.Fail(phase, err)
		return
	}

	job.Complete(res)
	log.Info("job completed",
		"triplets", len(res.Triplets),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// stage writes the job's bytes under a private temp directory, keeping the
// original filename so parser selection by extension still works.
func (w *Worker) stage(job *Job) (string, error) {
	dir, err := os.MkdirTemp(w.tempDir, "boardkin-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(job.Filename))
	if err := os.WriteFile(path, job.FileData(), 0o600); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

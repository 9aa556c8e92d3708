// Package runner executes transcription jobs in the background, bounded by
// a concurrency limit, and feeds task state and progress events as segments
// arrive from the transcription backend.
package runner

import (
	"context"
	"fmt"
	"math"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/internal/progress"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/internal/transcript"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/observability"
	"github.com/skillsenselab/audtext/storage"
	"github.com/skillsenselab/audtext/transcription"
)

const defaultMaxConcurrent = 2

// Job describes one transcription run.
type Job struct {
	// TaskID identifies the task being processed.
	TaskID string
	// StoragePath locates the uploaded audio. The file is read through the
	// storage provider and removed after the run.
	StoragePath string
	// Language is the requested language, empty for auto-detect.
	Language string
}

// Config holds runner settings.
type Config struct {
	// MaxConcurrent bounds the number of simultaneously running jobs.
	MaxConcurrent int64 `mapstructure:"max_concurrent"`
	// Model is the transcription model passed to the backend.
	Model string `mapstructure:"model"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
}

// Runner schedules and executes transcription jobs.
type Runner struct {
	cfg      Config
	store    *task.Store
	sink     progress.Sink
	provider transcription.Provider
	files    storage.Storage
	metrics  *observability.Metrics
	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	log      *logger.Logger
}

// New creates a runner. metrics may be nil when metric export is disabled.
func New(cfg Config, store *task.Store, sink progress.Sink, provider transcription.Provider, files storage.Storage, metrics *observability.Metrics) *Runner {
	cfg.ApplyDefaults()
	return &Runner{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		provider: provider,
		files:    files,
		metrics:  metrics,
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		log:      logger.WithComponent("runner"),
	}
}

// Schedule queues a job for background execution and returns immediately.
// The job waits for a concurrency slot before touching the backend.
func (r *Runner) Schedule(ctx context.Context, job Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.sem.Acquire(ctx, 1); err != nil {
			r.fail(job.TaskID, fmt.Errorf("acquire worker slot: %w", err))
			r.cleanup(job)
			return
		}
		defer r.sem.Release(1)
		r.run(ctx, job)
	}()
}

// Wait blocks until all scheduled jobs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// run executes one job end to end. The uploaded file is removed exactly
// once, whichever way the run ends.
func (r *Runner) run(ctx context.Context, job Job) {
	defer r.cleanup(job)

	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrTaskID, job.TaskID)

	started := time.Now()
	if !r.publish(job.TaskID, func(t *task.Task) {
		t.Status = task.StatusProcessing
		t.Progress = 0
		t.Message = "Starting transcription..."
	}, nil) {
		return
	}
	if r.metrics != nil {
		r.metrics.RecordTaskStart(ctx)
	}

	audio, err := r.files.Download(ctx, job.StoragePath)
	if err != nil {
		r.failWithMetrics(ctx, job.TaskID, err)
		return
	}
	defer audio.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	stream, err := r.provider.Transcribe(ctx, transcription.Request{
		Audio:    audio,
		Filename: path.Base(job.StoragePath),
		Language: job.Language,
		Model:    r.cfg.Model,
	})
	if err != nil {
		r.failWithMetrics(ctx, job.TaskID, err)
		return
	}
	defer stream.Segments.Close() //nolint:errcheck // Stream teardown, nothing to recover

	var (
		segments  []task.Segment
		textParts []string
	)

	for {
		seg, ok, err := stream.Segments.Next(ctx)
		if err != nil {
			r.failWithMetrics(ctx, job.TaskID, err)
			return
		}
		if !ok {
			break
		}

		text := strings.TrimSpace(seg.Text)
		if text != "" {
			segments = append(segments, task.Segment{
				ID:    len(segments),
				Start: round2(seg.Start),
				End:   round2(seg.End),
				Text:  text,
			})
			textParts = append(textParts, text)
		}

		// Progress comes from audio time, never segment counts. Without a
		// known duration no percentage is fabricated.
		if stream.Duration > 0 {
			pct := math.Min(seg.End/stream.Duration*100, 99.0)
			current := len(segments)
			r.publish(job.TaskID, func(t *task.Task) {
				t.Progress = pct
				t.Message = fmt.Sprintf("Transcribing... %d%%", int(pct))
			}, &current)
		}
	}

	fullText := transcript.Clean(strings.Join(textParts, " "))
	language := transcript.ResolveLanguage(stream.Language, fullText)

	result := &task.Result{
		Language:  language,
		Duration:  round2(stream.Duration),
		Segments:  segments,
		FullText:  fullText,
		CreatedAt: time.Now().UTC(),
	}

	current := len(segments)
	r.publish(job.TaskID, func(t *task.Task) {
		t.Status = task.StatusCompleted
		t.Progress = 100.0
		t.Message = "Transcription complete!"
		t.Result = result
	}, &current)

	if r.metrics != nil {
		r.metrics.RecordTaskComplete(ctx, language, time.Since(started))
	}
	r.log.Info("transcription complete", logger.Fields(
		logger.FieldTaskID, job.TaskID,
		"language", language,
		"segments", len(segments),
		"duration_seconds", result.Duration,
	))
}

// publish updates the task and broadcasts the resulting snapshot, in that
// order, carrying identical values to both. Returns false when the task is
// gone from the store.
func (r *Runner) publish(taskID string, mutate func(*task.Task), currentSegment *int) bool {
	snapshot, err := r.store.Update(taskID, mutate)
	if err != nil {
		r.log.WithError(err).Warn("task vanished mid-run", logger.Fields(logger.FieldTaskID, taskID))
		return false
	}
	ev := progress.FromTask(snapshot)
	ev.CurrentSegment = currentSegment
	r.sink.Publish(ev)
	return true
}

// fail moves the task to the failed state at its current progress. The
// failure is recorded under the transcription error code so the stored
// error stays machine-classifiable.
func (r *Runner) fail(taskID string, cause error) {
	appErr := errors.TranscriptionFailed(cause)
	r.log.WithError(appErr).Error("transcription failed", logger.Fields(logger.FieldTaskID, taskID))
	r.publish(taskID, func(t *task.Task) {
		t.Status = task.StatusFailed
		t.Message = fmt.Sprintf("Transcription error: %s", cause)
		t.Error = appErr.Error()
	}, nil)
}

func (r *Runner) failWithMetrics(ctx context.Context, taskID string, cause error) {
	observability.SetSpanError(ctx, cause)
	if r.metrics != nil {
		r.metrics.RecordTaskFailure(ctx, "transcription_error")
	}
	r.fail(taskID, cause)
}

// cleanup removes the uploaded audio file. Failures are logged and
// swallowed; the transcript outcome stands either way.
func (r *Runner) cleanup(job Job) {
	if job.StoragePath == "" {
		return
	}
	if err := r.files.Delete(context.Background(), job.StoragePath); err != nil {
		r.log.WithError(err).Warn("cleanup failed", logger.Fields(
			logger.FieldTaskID, job.TaskID,
			"path", job.StoragePath,
		))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

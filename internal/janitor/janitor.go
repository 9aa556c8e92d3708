// Package janitor periodically removes stale uploaded files left behind by
// interrupted runs, for example a crash between upload and cleanup.
package janitor

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/skillsenselab/audtext/component"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/storage"
)

const (
	defaultSchedule = "@every 1h"
	defaultMaxAge   = 24 * time.Hour
	defaultPrefix   = "uploads/"
)

// Config holds janitor settings.
type Config struct {
	// Schedule is a cron expression or @every interval.
	Schedule string `mapstructure:"schedule"`
	// MaxAge is how old a file must be before it is swept.
	MaxAge time.Duration `mapstructure:"max_age"`
	// Prefix limits the sweep to files under this storage prefix.
	Prefix string `mapstructure:"prefix"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.MaxAge <= 0 {
		c.MaxAge = defaultMaxAge
	}
	if c.Prefix == "" {
		c.Prefix = defaultPrefix
	}
}

// Janitor sweeps stale uploads on a cron schedule.
type Janitor struct {
	cfg   Config
	files storage.Storage
	cron  *cron.Cron
	log   *logger.Logger
}

// New creates a janitor over the given storage.
func New(cfg Config, files storage.Storage) *Janitor {
	cfg.ApplyDefaults()
	return &Janitor{
		cfg:   cfg,
		files: files,
		cron:  cron.New(),
		log:   logger.WithComponent("janitor"),
	}
}

// Name returns the component name.
func (j *Janitor) Name() string { return "janitor" }

// Start schedules the sweep job.
func (j *Janitor) Start(_ context.Context) error {
	if _, err := j.cron.AddFunc(j.cfg.Schedule, func() {
		j.Sweep(context.Background())
	}); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("janitor started", logger.Fields(
		"schedule", j.cfg.Schedule,
		"max_age", j.cfg.MaxAge.String(),
	))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop(ctx context.Context) error {
	stopped := j.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// Health reports the janitor as healthy while scheduled.
func (j *Janitor) Health(_ context.Context) component.Health {
	return component.Health{Name: j.Name(), Status: component.StatusHealthy}
}

// Sweep removes files under the configured prefix older than MaxAge and
// returns the number removed. Individual delete failures are logged and do
// not abort the sweep.
func (j *Janitor) Sweep(ctx context.Context) int {
	files, err := j.files.List(ctx, j.cfg.Prefix)
	if err != nil {
		j.log.WithError(err).Error("sweep list failed")
		return 0
	}

	cutoff := time.Now().Add(-j.cfg.MaxAge)
	removed := 0
	for _, f := range files {
		if f.LastModified.After(cutoff) {
			continue
		}
		if err := j.files.Delete(ctx, f.Path); err != nil {
			j.log.WithError(err).Warn("sweep delete failed", logger.Fields("path", f.Path))
			continue
		}
		removed++
	}

	if removed > 0 {
		j.log.Info("swept stale uploads", logger.Fields("removed", removed))
	}
	return removed
}

// compile-time check
var _ component.Component = (*Janitor)(nil)

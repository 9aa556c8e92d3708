// Package api wires the HTTP surface of the service: audio upload, task
// status and results, live progress events, transcript exports, and
// summarization.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/internal/config"
	"github.com/skillsenselab/audtext/internal/runner"
	"github.com/skillsenselab/audtext/internal/summary"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/observability"
	"github.com/skillsenselab/audtext/sse"
	"github.com/skillsenselab/audtext/storage"
)

// Handlers carries the dependencies shared by all API handlers.
type Handlers struct {
	cfg        config.UploadConfig
	store      *task.Store
	runner     *runner.Runner
	summarizer *summary.Summarizer
	hub        *sse.Hub
	files      storage.Storage
	metrics    *observability.Metrics
	log        *logger.Logger
}

// New creates the handler set. metrics may be nil when metric export is
// disabled.
func New(
	cfg config.UploadConfig,
	store *task.Store,
	run *runner.Runner,
	summarizer *summary.Summarizer,
	hub *sse.Hub,
	files storage.Storage,
	metrics *observability.Metrics,
) *Handlers {
	return &Handlers{
		cfg:        cfg,
		store:      store,
		runner:     run,
		summarizer: summarizer,
		hub:        hub,
		files:      files,
		metrics:    metrics,
		log:        logger.WithComponent("api"),
	}
}

// RegisterRoutes mounts all API routes on the engine.
func (h *Handlers) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api")

	api.POST("/upload", h.Upload)
	api.GET("/status/:task_id", h.Status)
	api.GET("/result/:task_id", h.Result)
	api.GET("/events/:task_id", h.Events)

	export := api.Group("/export")
	export.GET("/txt/:task_id", h.ExportTxt)
	export.GET("/srt/:task_id", h.ExportSRT)
	export.GET("/vtt/:task_id", h.ExportVTT)
	export.GET("/json/:task_id", h.ExportJSON)

	api.POST("/summarize", h.Summarize)
	api.GET("/summarizer/health", h.SummarizerHealth)
}

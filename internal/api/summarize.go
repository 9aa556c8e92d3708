package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/internal/summary"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/observability"
	"github.com/skillsenselab/audtext/server"
)

// SummaryRequest asks for a summary of a completed transcription.
type SummaryRequest struct {
	TaskID string `json:"task_id" binding:"required"`
	Style  string `json:"style"`
}

// SummaryResponse carries the generated summary.
type SummaryResponse struct {
	TaskID  string `json:"task_id"`
	Summary string `json:"summary"`
	Style   string `json:"style"`
}

// Summarize generates a summary of a completed transcription.
func (h *Handlers) Summarize(c *gin.Context) {
	var req SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("body", err.Error()))
		return
	}

	t, err := h.store.Get(req.TaskID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if t.Status != task.StatusCompleted {
		server.RespondWithError(c, errors.NotReady("transcription", string(t.Status)))
		return
	}
	if t.Result == nil || t.Result.FullText == "" {
		server.RespondWithError(c, errors.InvalidInput("task_id", "no transcript text available"))
		return
	}

	style := summary.Style(req.Style)
	if req.Style == "" {
		style = summary.StyleConcise
	}

	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanSummarize)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrSummaryStyle, string(style))

	text, err := h.summarizer.Summarize(ctx, t.Result.FullText, style)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordSummary(ctx, string(style))
	}

	server.RespondOK(c, SummaryResponse{
		TaskID:  req.TaskID,
		Summary: text,
		Style:   string(style),
	})
}

// SummarizerHealth reports whether the summarization backend is reachable.
func (h *Handlers) SummarizerHealth(c *gin.Context) {
	available := h.summarizer.Available(c.Request.Context())

	status := "healthy"
	message := "Summarizer is ready"
	if !available {
		status = "unavailable"
		message = "Summarizer backend is not running"
	}

	server.RespondOK(c, gin.H{
		"status":  status,
		"message": message,
	})
}

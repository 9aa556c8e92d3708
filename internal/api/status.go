package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/server"
)

// StatusResponse reports task progress.
type StatusResponse struct {
	TaskID   string  `json:"task_id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message"`
}

// Status returns the progress of a task.
func (h *Handlers) Status(c *gin.Context) {
	t, err := h.store.Get(c.Param("task_id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	server.RespondOK(c, StatusResponse{
		TaskID:   t.ID,
		Status:   string(t.Status),
		Progress: t.Progress,
		Message:  t.Message,
	})
}

// Result returns the full transcription result of a completed task.
func (h *Handlers) Result(c *gin.Context) {
	t, err := h.store.Get(c.Param("task_id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if t.Status != task.StatusCompleted {
		server.RespondWithError(c, errors.NotReady("transcription", string(t.Status)))
		return
	}

	server.RespondOK(c, t)
}

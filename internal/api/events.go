package api

import (
	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/internal/progress"
	"github.com/skillsenselab/audtext/server"
	"github.com/skillsenselab/audtext/sse"
)

// Events streams progress updates for a task over SSE. The task must exist
// before subscribing; the stream stays open across the whole run and the
// client decides when to disconnect.
func (h *Handlers) Events(c *gin.Context) {
	taskID := c.Param("task_id")
	if _, err := h.store.Get(taskID); err != nil {
		server.RespondWithError(c, err)
		return
	}

	sse.ServeSSE(h.hub, c.Writer, c.Request, progress.Topic(taskID))
}

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/internal/transcript"
	"github.com/skillsenselab/audtext/server"
)

// completedResult fetches the task and enforces that it has finished
// successfully before anything is exported.
func (h *Handlers) completedResult(c *gin.Context) (task.Task, bool) {
	t, err := h.store.Get(c.Param("task_id"))
	if err != nil {
		server.RespondWithError(c, err)
		return task.Task{}, false
	}
	if t.Status != task.StatusCompleted || t.Result == nil {
		server.RespondWithError(c, errors.NotReady("transcription", string(t.Status)))
		return task.Task{}, false
	}
	return t, true
}

func attachmentHeader(c *gin.Context, taskID, ext string) {
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transcript_%s.%s"`, taskID, ext))
}

// ExportTxt serves the transcript as plain text.
func (h *Handlers) ExportTxt(c *gin.Context) {
	t, ok := h.completedResult(c)
	if !ok {
		return
	}
	attachmentHeader(c, t.ID, "txt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(transcript.ExportText(t.Result)))
}

// ExportSRT serves the transcript as SRT subtitles.
func (h *Handlers) ExportSRT(c *gin.Context) {
	t, ok := h.completedResult(c)
	if !ok {
		return
	}
	attachmentHeader(c, t.ID, "srt")
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(transcript.ExportSRT(t.Result)))
}

// ExportVTT serves the transcript as WebVTT subtitles.
func (h *Handlers) ExportVTT(c *gin.Context) {
	t, ok := h.completedResult(c)
	if !ok {
		return
	}
	attachmentHeader(c, t.ID, "vtt")
	c.Data(http.StatusOK, "text/vtt; charset=utf-8", []byte(transcript.ExportVTT(t.Result)))
}

// ExportJSON serves the full task record as a JSON download.
func (h *Handlers) ExportJSON(c *gin.Context) {
	t, ok := h.completedResult(c)
	if !ok {
		return
	}
	attachmentHeader(c, t.ID, "json")
	c.JSON(http.StatusOK, t)
}

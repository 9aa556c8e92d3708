package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/internal/runner"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/logger"
	"github.com/skillsenselab/audtext/observability"
	"github.com/skillsenselab/audtext/server"
	"github.com/skillsenselab/audtext/util"
)

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	TaskID   string `json:"task_id"`
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// Upload accepts a multipart audio file, registers a pending task and
// schedules transcription in the background.
func (h *Handlers) Upload(c *gin.Context) {
	ctx, span := observability.StartSpan(c.Request.Context(), observability.SpanUpload)
	defer span.End()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, errors.MissingField("file"))
		return
	}

	ext := util.FileExtension(fileHeader.Filename)
	if !h.allowedExtension(ext) {
		server.RespondWithError(c, errors.InvalidInput("file",
			fmt.Sprintf("invalid file type. Allowed: %s", strings.Join(h.cfg.AllowedExtensions, ", "))))
		return
	}

	maxBytes := h.cfg.MaxFileSizeMB * 1024 * 1024
	if fileHeader.Size > maxBytes {
		server.RespondWithError(c, errors.InvalidInput("file",
			fmt.Sprintf("file too large. Maximum size: %dMB", h.cfg.MaxFileSizeMB)))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}
	defer src.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	taskID := uuid.NewString()[:8]
	storagePath := fmt.Sprintf("uploads/%s.%s", taskID, ext)

	if err := h.files.Upload(ctx, storagePath, src); err != nil {
		server.RespondWithError(c, errors.Internal(err))
		return
	}

	h.store.Create(taskID)
	h.store.Update(taskID, func(t *task.Task) { //nolint:errcheck // Task was just created
		t.Message = "File uploaded, waiting to start..."
	})

	// The job outlives this request, so it must not inherit its context.
	h.runner.Schedule(context.Background(), runner.Job{
		TaskID:      taskID,
		StoragePath: storagePath,
		Language:    c.PostForm("language"),
	})

	h.log.Info("upload accepted", logger.Fields(
		logger.FieldTaskID, taskID,
		"filename", fileHeader.Filename,
		"size_bytes", fileHeader.Size,
	))

	server.RespondOK(c, UploadResponse{
		TaskID:   taskID,
		Filename: fileHeader.Filename,
		Message:  "File uploaded successfully. Transcription started.",
	})
}

func (h *Handlers) allowedExtension(ext string) bool {
	for _, allowed := range h.cfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

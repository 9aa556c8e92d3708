package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/audtext/internal/config"
	"github.com/skillsenselab/audtext/internal/progress"
	"github.com/skillsenselab/audtext/internal/runner"
	"github.com/skillsenselab/audtext/internal/summary"
	"github.com/skillsenselab/audtext/internal/task"
	"github.com/skillsenselab/audtext/llm"
	"github.com/skillsenselab/audtext/sse"
	"github.com/skillsenselab/audtext/storage/local"
	"github.com/skillsenselab/audtext/transcription"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type stubIterator struct {
	segments []transcription.Segment
	pos      int
}

func (it *stubIterator) Next(_ context.Context) (transcription.Segment, bool, error) {
	if it.pos < len(it.segments) {
		seg := it.segments[it.pos]
		it.pos++
		return seg, true, nil
	}
	return transcription.Segment{}, false, nil
}

func (it *stubIterator) Close() error { return nil }

type stubTranscriber struct{}

func (stubTranscriber) Name() string                       { return "stub" }
func (stubTranscriber) IsAvailable(_ context.Context) bool { return true }
func (stubTranscriber) Transcribe(_ context.Context, _ transcription.Request) (*transcription.Stream, error) {
	return &transcription.Stream{
		Language: "en",
		Duration: 2.0,
		Segments: &stubIterator{segments: []transcription.Segment{
			{Start: 0, End: 2, Text: "Stub transcript."},
		}},
	}, nil
}

type stubLLM struct {
	available bool
}

func (s stubLLM) Name() string                       { return "stub-llm" }
func (s stubLLM) IsAvailable(_ context.Context) bool { return s.available }
func (s stubLLM) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: "A stub summary.", Model: "stub"}, nil
}

type fixture struct {
	engine *gin.Engine
	store  *task.Store
	runner *runner.Runner
	hub    *sse.Hub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files, err := local.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}

	hub := sse.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	store := task.NewStore()
	sink := progress.NewHubSink(hub)
	run := runner.New(runner.Config{MaxConcurrent: 1}, store, sink, stubTranscriber{}, files, nil)

	var cfg config.UploadConfig
	cfg.ApplyDefaults()

	h := New(cfg, store, run, summary.NewSummarizer(stubLLM{available: true}), hub, files, nil)

	engine := gin.New()
	h.RegisterRoutes(engine)

	return &fixture{engine: engine, store: store, runner: run, hub: hub}
}

func (f *fixture) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) completeTask(id string) {
	f.store.Create(id)
	f.store.Update(id, func(tk *task.Task) {
		tk.Status = task.StatusCompleted
		tk.Progress = 100
		tk.Message = "Transcription complete!"
		tk.Result = &task.Result{
			Language: "en",
			Duration: 10.5,
			FullText: "Hello world. Goodbye world.",
			Segments: []task.Segment{
				{ID: 0, Start: 0, End: 5.25, Text: "Hello world."},
				{ID: 1, Start: 5.25, End: 10.5, Text: "Goodbye world."},
			},
		}
	})
}

func TestStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/status/missing", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestStatus_Pending(t *testing.T) {
	f := newFixture(t)
	f.store.Create("abc12345")

	w := f.do(http.MethodGet, "/api/status/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Data StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Status != "pending" {
		t.Errorf("expected pending, got '%s'", resp.Data.Status)
	}
}

func TestResult_NotReady(t *testing.T) {
	f := newFixture(t)
	f.store.Create("abc12345")

	w := f.do(http.MethodGet, "/api/result/abc12345", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete task, got %d", w.Code)
	}
}

func TestResult_Completed(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	w := f.do(http.MethodGet, "/api/result/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Hello world.") {
		t.Error("expected transcript text in response")
	}
}

func TestUpload_InvalidExtension(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartFile(t, "file", "notes.txt", "not audio")
	w := f.do(http.MethodPost, "/api/upload", body, contentType)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for disallowed extension, got %d", w.Code)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	w := f.do(http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing file, got %d", w.Code)
	}
}

func TestUpload_SchedulesTranscription(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartFile(t, "file", "talk.mp3", "fake audio bytes")
	w := f.do(http.MethodPost, "/api/upload", body, contentType)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Data.TaskID) != 8 {
		t.Errorf("expected 8-char task id, got '%s'", resp.Data.TaskID)
	}
	if resp.Data.Filename != "talk.mp3" {
		t.Errorf("unexpected filename '%s'", resp.Data.Filename)
	}

	// The background run drains against the stub backend.
	f.runner.Wait()
	got, err := f.store.Get(resp.Data.TaskID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != task.StatusCompleted {
		t.Errorf("expected completed after run, got %s (%s)", got.Status, got.Message)
	}
	if got.Result == nil || got.Result.FullText != "Stub transcript." {
		t.Errorf("unexpected result %+v", got.Result)
	}
}

func TestExportTxt(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	w := f.do(http.MethodGet, "/api/export/txt/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "Hello world. Goodbye world." {
		t.Errorf("unexpected body '%s'", w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "transcript_abc12345.txt") {
		t.Errorf("unexpected disposition '%s'", cd)
	}
}

func TestExportSRT(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	w := f.do(http.MethodGet, "/api/export/srt/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "00:00:00,000 --> 00:00:05,250") {
		t.Errorf("expected SRT cue, got '%s'", w.Body.String())
	}
}

func TestExportVTT(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	w := f.do(http.MethodGet, "/api/export/vtt/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "WEBVTT") {
		t.Errorf("expected WEBVTT header, got '%s'", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vtt") {
		t.Errorf("unexpected content type '%s'", ct)
	}
}

func TestExportJSON(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	w := f.do(http.MethodGet, "/api/export/json/abc12345", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got task.Task
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Result == nil || len(got.Result.Segments) != 2 {
		t.Errorf("expected full result in JSON export, got %+v", got.Result)
	}
}

func TestExport_NotFoundAndNotReady(t *testing.T) {
	f := newFixture(t)
	f.store.Create("pending1")

	for _, path := range []string{
		"/api/export/txt/missing",
		"/api/export/srt/missing",
		"/api/export/vtt/missing",
		"/api/export/json/missing",
	} {
		if w := f.do(http.MethodGet, path, nil, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}

	for _, path := range []string{
		"/api/export/txt/pending1",
		"/api/export/srt/pending1",
		"/api/export/vtt/pending1",
		"/api/export/json/pending1",
	} {
		if w := f.do(http.MethodGet, path, nil, ""); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestSummarize(t *testing.T) {
	f := newFixture(t)
	f.completeTask("abc12345")

	body := bytes.NewBufferString(`{"task_id":"abc12345","style":"bullet_points"}`)
	w := f.do(http.MethodPost, "/api/summarize", body, "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data SummaryResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Summary != "A stub summary." {
		t.Errorf("unexpected summary '%s'", resp.Data.Summary)
	}
	if resp.Data.Style != "bullet_points" {
		t.Errorf("unexpected style '%s'", resp.Data.Style)
	}
}

func TestSummarize_NotReady(t *testing.T) {
	f := newFixture(t)
	f.store.Create("abc12345")

	body := bytes.NewBufferString(`{"task_id":"abc12345"}`)
	w := f.do(http.MethodPost, "/api/summarize", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for incomplete task, got %d", w.Code)
	}
}

func TestSummarize_MissingTaskID(t *testing.T) {
	f := newFixture(t)

	body := bytes.NewBufferString(`{"style":"concise"}`)
	w := f.do(http.MethodPost, "/api/summarize", body, "application/json")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing task_id, got %d", w.Code)
	}
}

func TestSummarizerHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/summarizer/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("expected healthy status, got '%s'", w.Body.String())
	}
}

func TestEvents_UnknownTask(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/events/missing", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown task, got %d", w.Code)
	}
}

func TestEvents_StreamsProgress(t *testing.T) {
	f := newFixture(t)
	f.store.Create("abc12345")

	req := httptest.NewRequest(http.MethodGet, "/api/events/abc12345", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.engine.ServeHTTP(w, req)
	}()

	// Let the subscription land, push one event, then hang up.
	time.Sleep(20 * time.Millisecond)
	sink := progress.NewHubSink(f.hub)
	sink.Publish(progress.Event{TaskID: "abc12345", Status: "processing", Progress: 10, Message: "Transcribing... 10%"})
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: connected") {
		t.Errorf("expected connected event, got '%s'", body)
	}
	if !strings.Contains(body, `"progress":10`) {
		t.Errorf("expected progress event in stream, got '%s'", body)
	}
}

func multipartFile(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write multipart: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

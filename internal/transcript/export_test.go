package transcript

import (
	"strings"
	"testing"

	"github.com/skillsenselab/audtext/internal/task"
)

func TestFormatTimestampSRT(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00,000"},
		{65.123, "00:01:05,123"},
		{3661.999, "01:01:01,999"},
		{59.5, "00:00:59,500"},
		// The float64 fraction of 1.999 is slightly below .999 and must
		// still round up, not truncate.
		{1.999, "00:00:01,999"},
		// A fraction rounding up to a full second carries over.
		{59.9999, "00:01:00,000"},
		{3599.9999, "01:00:00,000"},
	}
	for _, tc := range cases {
		if got := FormatTimestampSRT(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestampSRT(%f): expected '%s', got '%s'", tc.seconds, tc.want, got)
		}
	}
}

func TestFormatTimestampVTT(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0.0, "00:00:00.000"},
		{65.123, "00:01:05.123"},
		{3661.999, "01:01:01.999"},
		{1.999, "00:00:01.999"},
		{59.9999, "00:01:00.000"},
	}
	for _, tc := range cases {
		if got := FormatTimestampVTT(tc.seconds); got != tc.want {
			t.Errorf("FormatTimestampVTT(%f): expected '%s', got '%s'", tc.seconds, tc.want, got)
		}
	}
}

func sampleResult() *task.Result {
	return &task.Result{
		Language: "en",
		Duration: 10.5,
		FullText: "Hello world. Goodbye world.",
		Segments: []task.Segment{
			{ID: 0, Start: 0, End: 5.25, Text: "Hello world."},
			{ID: 1, Start: 5.25, End: 10.5, Text: "Goodbye world."},
		},
	}
}

func TestExportText(t *testing.T) {
	if got := ExportText(sampleResult()); got != "Hello world. Goodbye world." {
		t.Errorf("unexpected text export '%s'", got)
	}
}

func TestExportSRT(t *testing.T) {
	got := ExportSRT(sampleResult())

	want := strings.Join([]string{
		"1",
		"00:00:00,000 --> 00:00:05,250",
		"Hello world.",
		"",
		"2",
		"00:00:05,250 --> 00:00:10,500",
		"Goodbye world.",
		"",
	}, "\n")
	if got != want {
		t.Errorf("unexpected SRT output:\n%s", got)
	}
}

func TestExportSRT_Empty(t *testing.T) {
	if got := ExportSRT(&task.Result{}); got != "" {
		t.Errorf("expected empty SRT for no segments, got '%s'", got)
	}
}

func TestExportVTT(t *testing.T) {
	got := ExportVTT(sampleResult())

	if !strings.HasPrefix(got, "WEBVTT\n\n") {
		t.Errorf("expected WEBVTT header, got '%s'", got)
	}
	if !strings.Contains(got, "00:00:00.000 --> 00:00:05.250\nHello world.") {
		t.Errorf("expected first cue, got '%s'", got)
	}
	if strings.Contains(got, "1\n00:00") {
		t.Error("VTT cues must not be numbered")
	}
}

package transcript

import (
	"fmt"
	"math"
	"strings"

	"github.com/skillsenselab/audtext/internal/task"
)

// splitTimestamp breaks seconds into clock components. Rounding happens on
// the total millisecond count so values like 3661.999, whose float64
// fractional part falls just short of .999, do not truncate down a
// millisecond, and a fraction rounding up to 1000 carries into the seconds.
func splitTimestamp(seconds float64) (hours, minutes, secs, millis int) {
	total := int(math.Round(seconds * 1000))
	hours = total / 3600000
	minutes = (total % 3600000) / 60000
	secs = (total % 60000) / 1000
	millis = total % 1000
	return
}

// FormatTimestampSRT converts seconds to the SRT timestamp format
// (HH:MM:SS,mmm).
func FormatTimestampSRT(seconds float64) string {
	hours, minutes, secs, millis := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatTimestampVTT converts seconds to the WebVTT timestamp format
// (HH:MM:SS.mmm).
func FormatTimestampVTT(seconds float64) string {
	hours, minutes, secs, millis := splitTimestamp(seconds)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

// ExportText returns the transcript as plain text.
func ExportText(result *task.Result) string {
	return result.FullText
}

// ExportSRT renders the transcript segments as SRT subtitles. Cues are
// numbered from 1 in segment order.
func ExportSRT(result *task.Result) string {
	var lines []string
	for i, seg := range result.Segments {
		lines = append(lines,
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%s --> %s", FormatTimestampSRT(seg.Start), FormatTimestampSRT(seg.End)),
			seg.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

// ExportVTT renders the transcript segments as WebVTT subtitles.
func ExportVTT(result *task.Result) string {
	lines := []string{"WEBVTT", ""}
	for _, seg := range result.Segments {
		lines = append(lines,
			fmt.Sprintf("%s --> %s", FormatTimestampVTT(seg.Start), FormatTimestampVTT(seg.End)),
			seg.Text,
			"",
		)
	}
	return strings.Join(lines, "\n")
}

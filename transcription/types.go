package transcription

import (
	"io"

	"github.com/skillsenselab/audtext/provider"
)

// Request holds parameters for a transcription call.
type Request struct {
	// Audio is the audio content to transcribe. The provider consumes it
	// fully; the caller owns closing the underlying source.
	Audio io.Reader
	// Filename names the audio in the backend request, for format hints.
	Filename string
	// Language is the expected language of the audio (e.g. "en").
	// Empty means the backend auto-detects.
	Language string
	// Model is the transcription model to use.
	Model string
}

// Segment represents a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
}

// Stream is an in-flight transcription. Language and Duration are known
// up front; Segments yields time-aligned segments as the backend produces
// them. Callers must Close the iterator when done.
type Stream struct {
	// Language is the detected or requested language code.
	Language string
	// Duration is the audio duration in seconds. Zero when the backend
	// could not determine it.
	Duration float64
	// Segments yields transcript segments in temporal order.
	Segments provider.Iterator[Segment]
}

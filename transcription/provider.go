// Package transcription defines the transcription provider interface and common
// types for interacting with speech-to-text backends.
package transcription

import (
	"context"

	"github.com/skillsenselab/audtext/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// Transcribe starts transcribing the audio read from req.Audio. The
	// returned Stream carries language and duration metadata plus a lazy
	// segment iterator; the first segment may arrive long after the call
	// returns. Callers own the stream and must close its iterator.
	Transcribe(ctx context.Context, req Request) (*Stream, error)
}

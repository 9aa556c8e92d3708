// Package summary generates transcript summaries through an LLM provider.
package summary

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsenselab/audtext/errors"
	"github.com/skillsenselab/audtext/llm"
	"github.com/skillsenselab/audtext/logger"
)

// Style selects the shape of the generated summary.
type Style string

const (
	StyleConcise      Style = "concise"
	StyleDetailed     Style = "detailed"
	StyleBulletPoints Style = "bullet_points"

	// Low temperature keeps summaries grounded in the transcript.
	summaryTemperature = 0.3
)

// Styles lists the supported summary styles.
func Styles() []Style {
	return []Style{StyleConcise, StyleDetailed, StyleBulletPoints}
}

// Valid reports whether s is a supported style.
func (s Style) Valid() bool {
	switch s {
	case StyleConcise, StyleDetailed, StyleBulletPoints:
		return true
	}
	return false
}

var prompts = map[Style]string{
	StyleConcise: `Summarize the following transcript in 2-3 concise paragraphs. Focus on the main points and key takeaways.

Transcript:
%s

Summary:`,

	StyleDetailed: `Provide a detailed summary of the following transcript. Include all important points, context, and conclusions discussed.

Transcript:
%s

Detailed Summary:`,

	StyleBulletPoints: `Summarize the following transcript as a list of bullet points. Extract the key points, facts, and conclusions.

Transcript:
%s

Key Points:
-`,
}

// Prompt renders the prompt for a style. Unknown styles fall back to concise.
func Prompt(style Style, transcript string) string {
	tmpl, ok := prompts[style]
	if !ok {
		tmpl = prompts[StyleConcise]
	}
	return fmt.Sprintf(tmpl, transcript)
}

// Summarizer produces transcript summaries.
type Summarizer struct {
	provider llm.Provider
	log      *logger.Logger
}

// NewSummarizer creates a summarizer backed by the given LLM provider.
func NewSummarizer(provider llm.Provider) *Summarizer {
	return &Summarizer{
		provider: provider,
		log:      logger.WithComponent("summary"),
	}
}

// Summarize generates a summary of the transcript in the requested style.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, style Style) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", errors.MissingField("transcript")
	}
	if !style.Valid() {
		style = StyleConcise
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: "user", Content: Prompt(style, transcript)},
		},
		Temperature: summaryTemperature,
	})
	if err != nil {
		s.log.WithError(err).Error("summary generation failed")
		return "", errors.ExternalServiceError(s.provider.Name(), err)
	}

	s.log.Info("summary generated", logger.Fields(
		"style", string(style),
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	))
	return strings.TrimSpace(resp.Content), nil
}

// Available reports whether the backing LLM provider is reachable.
func (s *Summarizer) Available(ctx context.Context) bool {
	return s.provider.IsAvailable(ctx)
}

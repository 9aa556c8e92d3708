package transcript

import (
	"github.com/abadojack/whatlanggo"
)

// DetectLanguage returns the ISO 639-1 code of the dominant language in
// text. It backs up the transcription backend when it reports no language,
// and returns "" when the text is too short or ambiguous to classify.
func DetectLanguage(text string) string {
	if len(text) < 20 {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}

// ResolveLanguage prefers the language reported by the transcription
// backend, falling back to text-based detection.
func ResolveLanguage(reported, fullText string) string {
	if reported != "" {
		return reported
	}
	return DetectLanguage(fullText)
}

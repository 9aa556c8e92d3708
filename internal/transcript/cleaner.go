// Package transcript post-processes raw transcription output: artifact
// cleanup, subtitle export formats, and language detection fallback.
package transcript

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Clean normalizes whitespace and strips trailing repeated phrases, a common
// hallucination symptom in speech models. A trailing phrase of 3 to 7 words
// that immediately repeats itself is dropped once per phrase length, shortest
// first. Interior repeats and shorter runs are left alone.
func Clean(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")

	words := strings.Fields(text)
	if len(words) > 10 {
		for patternLen := 3; patternLen < 8; patternLen++ {
			if len(words) >= patternLen*3 {
				last := strings.Join(words[len(words)-patternLen:], " ")
				prev := strings.Join(words[len(words)-patternLen*2:len(words)-patternLen], " ")
				if last == prev {
					words = words[:len(words)-patternLen]
					text = strings.Join(words, " ")
				}
			}
		}
	}

	return strings.TrimSpace(text)
}

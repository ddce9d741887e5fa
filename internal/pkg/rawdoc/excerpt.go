package rawdoc

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// Excerpt returns the first n runes of the document's visible text.
func Excerpt(text string, kind Kind, n int) string {
	if kind != KindText {
		if kind == KindXML && IsDART(text) {
			text = NormalizeDART(text)
		}
		// StrictPolicy escapes what it keeps
		text = html.UnescapeString(strictPolicy.Sanitize(text))
	}

	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if n <= 0 || len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

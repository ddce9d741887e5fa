package rawdoc

import (
	"regexp"
	"strings"
)

type Kind string

const (
	KindHTML Kind = "html"
	KindXML  Kind = "xml"
	KindText Kind = "text"
)

const classifyLen = 2048

var (
	reHTMLElement = regexp.MustCompile(`(?i)<(table|div|p|br|span)[\s>/]`)
	reRootElement = regexp.MustCompile(`^<([A-Za-z_][\w.:-]*)`)
)

// Classify tells HTML, XML and plain text apart by looking at the markup.
func Classify(text string) Kind {
	s := strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if s == "" {
		return KindText
	}

	head := s
	if len(head) > classifyLen {
		head = head[:classifyLen]
	}
	head = strings.ToLower(head)

	switch {
	case strings.HasPrefix(head, "<?xml"):
		// XHTML
		if rootAfterProlog(head) == "html" {
			return KindHTML
		}
		return KindXML
	case hasAnyPrefix(head, "<!doctype html", "<html", "<head", "<body"):
		return KindHTML
	case IsDART(s):
		return KindXML
	case reHTMLElement.MatchString(s):
		return KindHTML
	case isXMLFragment(s):
		return KindXML
	}
	return KindText
}

func (k Kind) String() string {
	return string(k)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// rootAfterProlog returns the lowercased name of the first element in s,
// skipping processing instructions, comments and the doctype. A doctype
// naming html counts as an html root.
func rootAfterProlog(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "<?"):
			end := strings.Index(s, "?>")
			if end < 0 {
				return ""
			}
			s = s[end+2:]
		case strings.HasPrefix(s, "<!--"):
			end := strings.Index(s, "-->")
			if end < 0 {
				return ""
			}
			s = s[end+3:]
		case strings.HasPrefix(strings.ToLower(s), "<!doctype"):
			end := strings.IndexByte(s, '>')
			if end < 0 {
				return ""
			}
			if fields := strings.Fields(s[len("<!doctype"):end]); len(fields) > 0 && strings.EqualFold(fields[0], "html") {
				return "html"
			}
			s = s[end+1:]
		default:
			m := reRootElement.FindStringSubmatch(s)
			if m == nil {
				return ""
			}
			return strings.ToLower(m[1])
		}
	}
}

// isXMLFragment reports whether s starts with an element that is closed again.
func isXMLFragment(s string) bool {
	m := reRootElement.FindStringSubmatch(s)
	if m == nil {
		return false
	}

	name := m[1]
	return strings.Contains(s, "</"+name+">") || strings.HasSuffix(strings.TrimSpace(s), "/>")
}

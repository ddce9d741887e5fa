package rawdoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type RenderOptions struct {
	// Query pre-fills the search overlay.
	Query string
	// Overlay injects the search box; off for plain exports.
	Overlay bool
}

// Document is a raw report turned into a standalone UTF-8 HTML page.
type Document struct {
	Kind     Kind
	Encoding Encoding
	Title    string
	HTML     []byte
}

var preTemplate = template.Must(template.New("pre").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{.Head}}
</head>
<body>
<pre class="dv-raw">{{.Text}}</pre>
{{.Body}}
</body>
</html>
`))

// Render decodes raw, classifies it and builds the viewer page.
//
// HTML loses its scripts, inline handlers and javascript: URLs; the viewer runs
// it in an iframe sandbox that allows scripts for the overlay only.
func Render(raw []byte, opts RenderOptions) (*Document, error) {
	text, enc, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode raw report: %w", err)
	}

	doc := &Document{
		Kind:     Classify(text),
		Encoding: enc,
	}

	switch {
	case doc.Kind == KindHTML:
		doc.HTML, doc.Title, err = renderMarkup(text, opts)
	case doc.Kind == KindXML && IsDART(text):
		doc.HTML, doc.Title, err = renderMarkup(NormalizeDART(text), opts)
	case doc.Kind == KindXML:
		doc.HTML, err = renderPre(indentXML(text), "", opts)
	default:
		doc.HTML, err = renderPre(text, "", opts)
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func renderMarkup(text string, opts RenderOptions) ([]byte, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, "", fmt.Errorf("parse html: %w", err)
	}

	title := firstText(doc, "DOCUMENT-NAME", "head title", "title")

	sanitize(doc)

	// the page is re-encoded as UTF-8
	doc.Find("meta").FilterFunction(func(_ int, s *goquery.Selection) bool {
		if _, ok := s.Attr("charset"); ok {
			return true
		}
		equiv, _ := s.Attr("http-equiv")
		return strings.EqualFold(equiv, "content-type")
	}).Remove()

	head := doc.Find("head").First()
	head.PrependHtml(`<meta charset="utf-8">`)

	if opts.Overlay {
		body, err := overlayBody(opts.Query)
		if err != nil {
			return nil, "", err
		}
		head.AppendHtml(overlayHead())
		doc.Find("body").First().AppendHtml(body)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return nil, "", fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), title, nil
}

func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// sanitize strips everything in the document that could run code.
func sanitize(doc *goquery.Document) {
	doc.Find("script, noscript, object, embed, base").Remove()
	doc.Find("meta").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.AttrOr("http-equiv", "")), "refresh")
	}).Remove()

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		var drop []string
		for _, attr := range s.Nodes[0].Attr {
			key := strings.ToLower(attr.Key)
			switch {
			case strings.HasPrefix(key, "on"), key == "srcdoc":
				drop = append(drop, attr.Key)
			case key == "href" || key == "src" || key == "action" || key == "formaction":
				if isScriptURL(attr.Val) {
					drop = append(drop, attr.Key)
				}
			}
		}
		for _, key := range drop {
			s.RemoveAttr(key)
		}
	})
}

func isScriptURL(v string) bool {
	v = strings.ToLower(strings.Join(strings.Fields(v), ""))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:")
}

func renderPre(text, title string, opts RenderOptions) ([]byte, error) {
	data := struct {
		Title string
		Text  string
		Head  template.HTML
		Body  template.HTML
	}{
		Title: title,
		Text:  text,
	}

	if opts.Overlay {
		body, err := overlayBody(opts.Query)
		if err != nil {
			return nil, err
		}
		data.Head = template.HTML(overlayHead())
		data.Body = template.HTML(body)
	}

	var buf bytes.Buffer
	if err := preTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render text: %w", err)
	}
	return buf.Bytes(), nil
}

// indentXML re-indents well-formed XML; anything else comes back unchanged.
func indentXML(text string) string {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = false
	// text is already UTF-8 whatever the prolog says
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return text
		}

		if cd, ok := tok.(xml.CharData); ok {
			trimmed := bytes.TrimSpace(cd)
			if len(trimmed) == 0 {
				continue
			}
			tok = xml.CharData(trimmed)
		}

		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return text
		}
	}

	if err := enc.Flush(); err != nil {
		return text
	}
	return buf.String()
}

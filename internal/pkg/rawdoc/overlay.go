package rawdoc

import (
	_ "embed"
	"html/template"
	"strings"
)

var (
	//go:embed overlay.css
	overlayCSS string

	//go:embed overlay.js
	overlayJS string
)

var overlayTemplate = template.Must(template.New("overlay").Parse(
	`<div id="dv-search" role="search">` +
		`<input id="dv-search-input" type="search" placeholder="Search in document" value="{{.Query}}" autocomplete="off">` +
		`<span id="dv-search-count"></span>` +
		`<button type="button" data-dir="-1" title="Previous">&#9650;</button>` +
		`<button type="button" data-dir="1" title="Next">&#9660;</button>` +
		`</div>` +
		`<script>{{.Script}}</script>`))

func overlayHead() string {
	return "<style>" + overlayCSS + "</style>"
}

func overlayBody(query string) (string, error) {
	var b strings.Builder
	err := overlayTemplate.Execute(&b, struct {
		Query  string
		Script template.JS
	}{
		Query:  query,
		Script: template.JS(overlayJS),
	})
	return b.String(), err
}

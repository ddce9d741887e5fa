// Package web holds the templates and static assets of the viewer.
package web

import (
	"embed"
	"html/template"
	"io/fs"
)

var (
	//go:embed templates/*.tmpl
	templatesFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// Templates parses the page and fragment templates. Each file is a template
// named after its base name; select.tmpl only holds shared blocks.
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templatesFS, "templates/*.tmpl")
}

func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static is the content served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

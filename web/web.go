// Package web holds the embedded orb pages. Templates are compiled into the
// binary so the server ships as a single file next to its database.
package web

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var content embed.FS

var pages = template.Must(template.ParseFS(content, "templates/*.html"))

// Render writes the named page to w.
func Render(w http.ResponseWriter, name string, data any) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return pages.ExecuteTemplate(w, name, data)
}

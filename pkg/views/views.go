// Package views holds the HTML templates the page server renders.
package views

import (
	"embed"
	"html/template"
	"strings"

	"cms-site/pkg/links"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are available to every template.
var Funcs = template.FuncMap{
	"localize": links.Localize,
	"upper":    strings.ToUpper,
	"navURL":   navURL,
}

// Templates parses the embedded templates. It panics on a parse error,
// which can only happen when the embedded files are broken.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(Funcs).ParseFS(files, "templates/*.html"))
}

// navURL picks the first usable URL from a navigation item: an expanded
// reference, then an external link.
func navURL(refURL, external, locale string) string {
	if refURL != "" {
		return links.Localize(refURL, locale)
	}
	if external != "" {
		return external
	}
	return links.Fallback
}

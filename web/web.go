// Package web embeds the storefront page template and static assets.
package web

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.html
var templates embed.FS

//go:embed static
var static embed.FS

// Templates returns the page templates (index.html).
func Templates() fs.FS { return sub(templates, "templates") }

// Static returns the files served at the site root (products.json, images/).
func Static() fs.FS { return sub(static, "static") }

func sub(fsys fs.FS, dir string) fs.FS {
	s, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return s
}

package web

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/* static/*
var assets embed.FS

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(assets, "templates/*.html")
}

// StaticFS returns the embedded static assets.
func StaticFS() (fs.FS, error) {
	return fs.Sub(assets, "static")
}

package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templateFS embed.FS

//go:embed all:static
var staticFS embed.FS

// TemplateFS holds the blog page layouts and page templates.
var TemplateFS fs.FS = templateFS

// StaticFS holds the stylesheet, the live update and form scripts and the thumbnail presets.
var StaticFS fs.FS = staticFS

package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const tableTemplate = "templates/table.tmpl"

// TemplatesFS exposes the built-in template bundle so callers can copy and
// override it with WithTemplatesFS.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

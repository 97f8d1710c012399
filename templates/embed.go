package templates

import "embed"

// FS holds the server-rendered pages
//
//go:embed *.html
var FS embed.FS

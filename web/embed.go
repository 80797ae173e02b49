// Package web holds the embedded templates and static assets served by the
// admin backend in release mode. In debug mode the same files are read from
// disk so template edits show up without a rebuild.
package web

import "embed"

//go:embed templates static
var EmbeddedFS embed.FS

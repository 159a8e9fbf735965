// Package web embeds the HTML templates and static assets served in release
// mode. Debug mode reads the same tree from disk.
package web

import "embed"

//go:embed templates static
var EmbeddedFS embed.FS

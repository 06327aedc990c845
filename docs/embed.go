// Package docs holds the long-form Markdown documentation bundled with mvq.
package docs

import "embed"

// FS contains the docs index and topic files.
//
//go:embed index.yaml guide reference
var FS embed.FS

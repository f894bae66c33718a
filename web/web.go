// Package web embeds the landing page and its static assets.
package web

import "embed"

//go:embed views/index.html public
var Assets embed.FS

// Package web embeds the browser assets served under /static/.
package web

import "embed"

//go:embed static
var StaticFS embed.FS

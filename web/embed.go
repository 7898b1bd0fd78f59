// Package web embeds the browser widget assets the API serves alongside the
// try-on endpoint, so one binary ships the whole system.
package web

import "embed"

//go:embed widget demo.html
var Assets embed.FS

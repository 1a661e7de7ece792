// Package web embeds the single-page client served at the root route. All
// application state lives server-side in the session ledger; the client is
// a thin JSON consumer.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS

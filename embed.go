package folio

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// chat.js, the widget backing the /api/chat endpoints.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

// Package observability holds the logging and metrics plumbing shared by the
// api, worker and ingest binaries.
package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON slog logger in production and a text one
// everywhere else.
func NewLogger(env string) *slog.Logger {
	switch env {
	case "prod", "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
}

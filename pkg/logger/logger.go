// Package logger builds the structured JSON logger shared by all services.
package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog.Logger tagged with the service name and host.
func New(service string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String("timestamp", a.Value.Time().Format("2006-01-02T15:04:05Z07:00"))
			}
			if a.Key == slog.MessageKey {
				return slog.String("message", a.Value.String())
			}
			return a
		},
	})
	l := slog.New(handler)
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return l.With("host", host, "service", service)
}

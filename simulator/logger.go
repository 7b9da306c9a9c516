package simulator

import (
	"io"
	"log/slog"

	"github.com/rs/xid"
)

// ParseLevel maps a config log level to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a text logger at the given level, tagged with the run id
func NewLogger(level string, w io.Writer, runID xid.ID) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})
	return slog.New(handler).With(slog.String("run_id", runID.String()))
}

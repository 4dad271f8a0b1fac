// Package logger builds the zerolog loggers used by the users service.
package logger

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to stderr at the given level.
func New(level, format string) (zerolog.Logger, error) {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	switch format {
	case FormatText:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case FormatJSON, "":
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Middleware attaches log to every request context and writes one access line per request.
// Server faults log at error, client faults at warn.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		l := hlog.FromRequest(r)

		var e *zerolog.Event
		switch {
		case status >= 500:
			e = l.Error()
		case status >= 400:
			e = l.Warn()
		default:
			e = l.Info()
		}

		e.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("latency", duration).
			Msg("request")
	})

	return func(next http.Handler) http.Handler {
		return hlog.NewHandler(log)(access(next))
	}
}

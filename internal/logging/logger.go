package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Output formats understood by NewWithOptions.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options configures the application logger.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Output io.Writer // defaults to os.Stderr
}

// New creates a configured application logger.
// It writes to Stderr so that stdout stays free for command output (extracted
// texts, mermaid graphs).
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level.String()})
}

// NewWithOptions builds a slog.Logger backed by a charm logger.
func NewWithOptions(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	level, err := charmlog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = charmlog.InfoLevel
	}
	handler := charmlog.NewWithOptions(out, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Level:           level,
	})
	if strings.EqualFold(opts.Format, FormatJSON) {
		handler.SetFormatter(charmlog.JSONFormatter)
	} else {
		handler.SetFormatter(charmlog.TextFormatter)
	}
	return slog.New(handler)
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

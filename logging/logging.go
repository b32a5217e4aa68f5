// Package logging builds the slog logger used by the client.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config selects where logs go.
type Config struct {
	// Enabled turns on text logs on stderr.
	Enabled bool
	// StoreLogs additionally writes JSON logs to File.
	StoreLogs bool
	// File is the rotating log file path.
	File string
	// Level is the minimum level. Default: info.
	Level slog.Level
	// Output overrides stderr.
	Output io.Writer
}

// New returns a logger for cfg. The closer is non-nil only when a log file was opened.
// With both outputs off every record is discarded.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handlers []slog.Handler
	if cfg.Enabled {
		out := cfg.Output
		if out == nil {
			out = os.Stderr
		}
		handlers = append(handlers, slog.NewTextHandler(out, opts))
	}

	var closer io.Closer
	if cfg.StoreLogs && cfg.File != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		handlers = append(handlers, slog.NewJSONHandler(fileWriter, opts))
		closer = fileWriter
	}

	switch len(handlers) {
	case 0:
		return slog.New(slog.DiscardHandler), nil, nil
	case 1:
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(slog.NewMultiHandler(handlers...)), closer, nil
}

// Package logging configures the process-wide slog logger used by the
// serve mode.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const modulePath = "github.com/serjsysoev/pipefold"

// Options controls the logger set up by Init.
type Options struct {
	// Level is one of debug, info, warn, error. Unknown values mean info.
	Level string
	// IncludeSrc adds the logging call site to every record.
	IncludeSrc bool
	// Filename, when non-empty, mirrors the log stream into a rotated
	// file alongside stdout.
	Filename   string
	MaxSizeMB  int
	MaxAgeDays int
	MaxBackups int
}

// Init installs a JSON slog logger as the process default.
func Init(opts Options) {
	handlerOpts := &slog.HandlerOptions{
		Level:     levelFromString(opts.Level),
		AddSource: opts.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
					source.Function = strings.Replace(source.Function, modulePath, "", -1)
				}
			}
			return a
		},
	}

	var w io.Writer = os.Stdout
	if opts.Filename != "" {
		logTarget := &lumberjack.Logger{
			Filename:   opts.Filename,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),  // megabytes
			MaxAge:     orDefault(opts.MaxAgeDays, 28), // days
			MaxBackups: orDefault(opts.MaxBackups, 3),
			Compress:   true,
		}
		w = io.MultiWriter(os.Stdout, logTarget)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(w, handlerOpts)))
}

func levelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Package log provides structured logging for go-gaze.
// It wraps slog with sensible defaults and optional file rotation.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *slog.Logger
	file   *lumberjack.Logger
	once   sync.Once
)

// Options configures the global logger.
type Options struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level" json:"level"`

	// File, when set, receives a copy of every line, rotated at 50MB.
	File string `yaml:"file" json:"file"`

	// JSON selects the JSON handler. GO_ENV=production implies it.
	JSON bool `yaml:"json" json:"json"`
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to out and, if opts.File is set, to a
// rotating file. The returned closer releases the file.
func New(opts Options, out io.Writer) (*slog.Logger, io.Closer) {
	var closer io.Closer = nopCloser{}

	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50, // MB
			MaxAge:     7,
			MaxBackups: 3,
		}
		out = io.MultiWriter(out, rotating)
		closer = rotating
	}

	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
	}

	// Use JSON in production, text in development
	if opts.JSON || os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(out, handlerOpts)), closer
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts)), closer
}

// Init initializes the global logger. Only the first call has an effect.
func Init(opts Options) {
	once.Do(func() {
		var closer io.Closer
		logger, closer = New(opts, os.Stdout)
		if rotating, ok := closer.(*lumberjack.Logger); ok {
			file = rotating
		}
		slog.SetDefault(logger)
	})
}

// Close flushes and closes the log file, if any.
func Close() error {
	if file == nil {
		return nil
	}
	return file.Close()
}

// L returns the global logger instance.
func L() *slog.Logger {
	if logger == nil {
		Init(Options{Level: "info"})
	}
	return logger
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	L().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	L().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	L().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	L().Error(msg, args...)
}

// With returns a logger with the given attributes.
func With(args ...any) *slog.Logger {
	return L().With(args...)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

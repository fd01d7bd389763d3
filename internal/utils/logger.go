package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type LoggerConfig struct {
	Level string
	// Dir enables a per-component log file under Dir when set.
	Dir       string
	Component string
	// Output defaults to os.Stdout.
	Output io.Writer
}

type Logger struct {
	zerolog.Logger
	file *os.File
}

// NewLogger builds a zerolog logger writing to stdout and, when a log
// directory is configured, to logs/<component>/<component>_<timestamp>.log.
func NewLogger(cfg LoggerConfig) (*Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	component := cfg.Component
	if component == "" {
		component = "site"
	}

	l := &Logger{}
	if cfg.Dir != "" {
		// Sanitize component name for file system
		sanitized := strings.ReplaceAll(strings.ToLower(component), " ", "_")
		componentDir := filepath.Join(cfg.Dir, sanitized)
		if err := os.MkdirAll(componentDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(componentDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))
		file, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		l.file = file
		out = io.MultiWriter(out, file)
	}

	l.Logger = zerolog.New(out).Level(level).With().
		Timestamp().
		Str("service", component).
		Logger()

	return l, nil
}

// Component returns a child logger annotated with the given component name.
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

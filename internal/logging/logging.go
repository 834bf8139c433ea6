package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Setup initializes a zerolog.Logger based on the requested format.
// format can be "text" (human-friendly console) or "json" (structured).
func Setup(format string) zerolog.Logger {
	return zerolog.New(consoleWriter(format)).With().Timestamp().Logger()
}

// SetupWithFile is Setup plus a copy of every event in the file at path,
// truncated on open. The returned func closes the file.
func SetupWithFile(format, path string) (zerolog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return zerolog.Logger{}, nil, fmt.Errorf("open log file: %w", err)
	}
	fileOut := io.Writer(f)
	if format == "text" {
		fileOut = zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339}
	}
	w := zerolog.MultiLevelWriter(consoleWriter(format), fileOut)
	return zerolog.New(w).With().Timestamp().Logger(), f.Close, nil
}

func consoleWriter(format string) io.Writer {
	if format == "text" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}
	return os.Stderr
}

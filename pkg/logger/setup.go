package logger

import (
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// Setup builds the process logger: colorized console output on stderr plus,
// when logFile is non-empty, a JSON copy appended to that file for later
// inspection. Returns the handler and a cleanup function for the file.
func Setup(logFile string) (slog.Handler, func() error) {
	console := NewHandler(os.Stderr, DefaultOptions)
	if logFile == "" {
		return console, func() error { return nil }
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.New(console).Error("opening log file, using stderr only", "file", logFile, Err(err))
		return console, func() error { return nil }
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})

	return slogmulti.Fanout(console, fileHandler), file.Close
}

package migrations

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
)

// gooseLogger adapts slog to goose's Printf/Fatalf logger interface.
type gooseLogger struct {
	log *slog.Logger
}

// NewGooseLogger returns a goose.Logger that writes through log.
func NewGooseLogger(log *slog.Logger) goose.Logger {
	return &gooseLogger{log: log}
}

// Printf implements goose.Logger.
func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf implements goose.Logger. Goose only calls it for unrecoverable setup errors.
func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}

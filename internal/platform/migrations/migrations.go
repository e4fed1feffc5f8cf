package migrations

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/config"
)

// TableName is the goose version table shared by every dialect.
const TableName = "schema_migrations"

// Supported migration commands.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandStatus  = "status"
	CommandVersion = "version"
)

var (
	// ErrUnknownCommand is returned for a migration command other than the supported ones.
	ErrUnknownCommand = errors.New("unknown migration command")

	// ErrUnsupportedDriver is returned when no migrations exist for a database driver.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

//go:embed postgres/*.sql sqlite/*.sql
var embedded embed.FS

// goose keeps its dialect, table and filesystem in package globals.
var gooseMu sync.Mutex

// dialectFor returns the goose dialect and embedded directory for a config driver.
func dialectFor(driver string) (string, string, error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", "postgres", nil
	case config.DriverSQLite:
		return "sqlite3", "sqlite", nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Files returns the embedded migration files for driver.
func Files(driver string) (fs.FS, error) {
	_, dir, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return fs.Sub(embedded, dir)
}

// Run executes a goose command against db using the embedded migrations for driver.
// Goose output is routed through logger.
func Run(ctx context.Context, db *sql.DB, driver, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, dir, err := dialectFor(driver)
	if err != nil {
		return err
	}

	log := logger.With("component", "migrations", "command", command, "driver", driver)

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(NewGooseLogger(log))
	goose.SetBaseFS(embedded)
	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	start := time.Now()
	switch command {
	case CommandUp:
		err = goose.UpContext(ctx, db, dir)
	case CommandDown:
		err = goose.DownContext(ctx, db, dir)
	case CommandStatus:
		err = goose.StatusContext(ctx, db, dir)
	case CommandVersion:
		var version int64
		version, err = goose.GetDBVersionContext(ctx, db)
		if err == nil {
			log.Info("current migration version", "version", version)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	if err != nil {
		log.Error("migration command failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("migration %s failed: %w", command, err)
	}

	log.Info("migration command completed", "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Version returns the current schema version of db.
func Version(ctx context.Context, db *sql.DB, driver string) (int64, error) {
	dialect, _, err := dialectFor(driver)
	if err != nil {
		return 0, err
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetTableName(TableName)
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

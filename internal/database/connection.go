// Package database provides database connection management and operations for termvault.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/termvault/termvault/db/migrations"
	"github.com/termvault/termvault/internal/config"
	sqldb "github.com/termvault/termvault/internal/database/sqlc"
	"github.com/termvault/termvault/internal/logger"

	// Import SQLite driver for database/sql
	_ "modernc.org/sqlite"
)

// Context holds the database connection and query interface.
type Context struct {
	DB      *sql.DB
	Queries *sqldb.Queries
	Log     *logger.Logger
}

func (c *Context) logger(operation string) *logger.Logger {
	if c == nil || c.Log == nil {
		return logger.Nop()
	}
	return c.Log.DbLogger(operation)
}

// Options configures how the database is opened.
type Options struct {
	// Path of the database file. Empty means config.GetDbPath, ":memory:"
	// opens a private in-memory database.
	Path string
	// BusyTimeoutMs bounds how long a writer waits for the write lock.
	BusyTimeoutMs int
	Logger        *logger.Logger
}

// CreateDatabase creates and initializes a database connection with migrations.
func CreateDatabase(dbPath string) (*Context, error) {
	return Open(Options{Path: dbPath})
}

// Open creates and initializes a database connection with migrations.
//
// Every transaction begins with BEGIN IMMEDIATE, so the database write lock is
// held from the first statement and concurrent writers queue on busy_timeout.
func Open(opts Options) (*Context, error) {
	path := opts.Path
	if path == "" {
		path = config.GetDbPath()
	}
	busyTimeout := opts.BusyTimeoutMs
	if busyTimeout <= 0 {
		busyTimeout = config.DefaultBusyTimeoutMs
	}

	useMemory := path == ":memory:"

	if !useMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	pragmas := fmt.Sprintf("_pragma=foreign_keys(ON)&_pragma=busy_timeout(%d)&_txlock=immediate", busyTimeout)

	var dsn string
	if useMemory {
		dsn = "file::memory:?" + pragmas
	} else {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?%s&_pragma=journal_mode(WAL)", filepath.ToSlash(absPath), pragmas)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if useMemory {
		// each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Context{
		DB:      db,
		Queries: sqldb.New(db),
		Log:     opts.Logger,
	}, nil
}

// CloseDatabase closes the database connection.
func CloseDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}
	return ctx.DB.Close()
}

// ClearDatabase removes all data from the database.
func ClearDatabase(ctx *Context) error {
	if ctx == nil || ctx.DB == nil {
		return nil
	}

	start := time.Now()
	bg := context.Background()
	tx, err := ctx.DB.BeginTx(bg, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	queries := queriesFromContext(ctx).WithTx(tx)

	steps := []struct {
		table string
		run   func(context.Context) error
	}{
		{"mappings", queries.DeleteAllMappings},
		{"concepts", queries.DeleteAllConcepts},
		{"localized_texts", queries.DeleteAllLocalizedTexts},
		{"sources", queries.DeleteAllSources},
	}

	for _, step := range steps {
		if err := step.run(bg); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("failed to delete %s: %w (rollback error: %w)", step.table, err, rbErr)
			}
			return fmt.Errorf("failed to delete %s: %w", step.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		err = fmt.Errorf("failed to commit clear transaction: %w", err)
		ctx.logger("clear").LogDbOperation(time.Since(start), 0, err)
		return err
	}

	ctx.logger("clear").LogDbOperation(time.Since(start), len(steps), nil)
	return nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to initialise migrate driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.Files, ".")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	defer func() {
		_ = sourceDriver.Close()
	}()

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

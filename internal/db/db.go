package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/hanziflash/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// pragmas are appended to every DSN unless the caller already set them.
var pragmas = []string{
	"_busy_timeout=5000",
	"_foreign_keys=on",
	"_journal_mode=WAL",
	"_synchronous=NORMAL",
}

// DB is the sentence catalog store.
type DB struct {
	*sql.DB
	log *logger.Logger
}

// Open connects to the sqlite database at path and applies pending migrations.
// ":memory:" works too since the pool is pinned to a single connection.
func Open(path string) (*DB, error) {
	return OpenContext(context.Background(), path)
}

func OpenContext(ctx context.Context, path string) (*DB, error) {
	log := logger.Default().WithPrefix("db")
	log.Info("opening catalog store: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{DB: sqlDB, log: log}
	if err := db.migrate(ctx, migrationsFS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return db, nil
}

// dsn merges the default pragmas into path, keeping any the caller passed.
func dsn(path string) string {
	base, query, _ := strings.Cut(path, "?")
	params := []string{}
	if query != "" {
		params = append(params, query)
	}
	for _, p := range pragmas {
		name, _, _ := strings.Cut(p, "=")
		if !strings.Contains(query, name+"=") {
			params = append(params, p)
		}
	}
	return base + "?" + strings.Join(params, "&")
}

// Ping is used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// AppliedMigrations lists recorded migration versions in order.
func (db *DB) AppliedMigrations(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// migrate applies every migrations/*.sql file not yet recorded, in file
// name order, each in its own transaction.
func (db *DB) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return err
	}

	files, err := fs.Glob(fsys, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	applied, err := db.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, file := range files {
		version := path.Base(file)
		if done[version] {
			continue
		}
		script, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}
		err = tx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return fmt.Errorf("apply %s: %w", version, err)
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version)
			return err
		})
		if err != nil {
			return err
		}
		db.log.Info("migration %s applied", version)
	}
	return nil
}

func tx(ctx context.Context, db *DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.log.Warn("rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit()
}

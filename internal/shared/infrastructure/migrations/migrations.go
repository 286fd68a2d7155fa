// Package migrations applies the embedded schema for the active driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var schemaFS embed.FS

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// Run applies every pending .up.sql file for the connection's driver in
// lexical order. Each file runs in its own transaction and is recorded in
// schema_migrations, so Run is safe to call on every start.
func Run(ctx context.Context, conn database.Connection) error {
	dir := string(conn.Driver())
	files, err := upFiles(dir)
	if err != nil {
		return err
	}

	if _, err := conn.Exec(ctx, createMigrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, name := range files {
		applied, err := isApplied(ctx, conn, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := apply(ctx, conn, dir, name); err != nil {
			return err
		}
	}
	return nil
}

// Pending lists the files Run would apply for driver, without touching a database.
func Pending(driver database.Driver) ([]string, error) {
	return upFiles(string(driver))
}

func upFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(schemaFS, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations for %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isApplied(ctx context.Context, conn database.Connection, name string) (bool, error) {
	var count int
	query := database.Rebind(conn.Driver(), `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`)
	if err := conn.QueryRow(ctx, query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func apply(ctx context.Context, conn database.Connection, dir, name string) error {
	body, err := schemaFS.ReadFile(dir + "/" + name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, string(body)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	record := database.Rebind(conn.Driver(), `INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`)
	if _, err := tx.Exec(ctx, record, name, database.FormatTime(time.Now())); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	return tx.Commit(ctx)
}

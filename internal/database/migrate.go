package database

import (
	"context"
	"embed"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies any pending SQL files under migrations/, in filename
// order. Each file runs inside its own transaction together with the row
// that records it as applied.
func (db *DB) Migrate(ctx context.Context, logger *log.Logger) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	ran := 0
	for _, filename := range files {
		if _, done := applied[filename]; done {
			continue
		}
		if err := db.applyMigration(ctx, filename); err != nil {
			return err
		}
		logger.Info("applied migration", "file", filename)
		ran++
	}
	if ran == 0 {
		logger.Debug("schema up to date", "migrations", len(files))
	}
	return nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]struct{}, error) {
	rows, err := db.Pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

func (db *DB) applyMigration(ctx context.Context, filename string) error {
	content, err := migrationsFS.ReadFile("migrations/" + filename)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filename, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("execute migration %s: %w", filename, err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO schema_migrations (version) VALUES ($1)`, filename,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", filename, err)
	}
	return tx.Commit(ctx)
}

package database

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded *.up.sql files that are not yet recorded in
// schema_migrations, each in its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB) (int, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`); err != nil {
		return 0, fmt.Errorf("creating migrations table: %w", err)
	}

	files, err := Migrations()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, filename := range files {
		version := extractVersion(filename)

		var exists int
		if err := db.GetContext(ctx, &exists, "SELECT COUNT(*) FROM schema_migrations WHERE version = $1", version); err != nil {
			return applied, fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + filename)
		if err != nil {
			return applied, fmt.Errorf("reading migration %s: %w", filename, err)
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return applied, fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("executing migration %s: %w", filename, err)
		}

		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			_ = tx.Rollback()
			return applied, fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return applied, fmt.Errorf("committing migration %d: %w", version, err)
		}

		applied++
		log.WithFields(log.Fields{"version": version, "file": filename}).Info("[DB] applied migration")
	}

	return applied, nil
}

// Migrations lists the embedded up migrations in the order they apply.
func Migrations() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var up []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			up = append(up, entry.Name())
		}
	}
	sort.Strings(up)
	return up, nil
}

func extractVersion(filename string) int {
	var version int
	_, _ = fmt.Sscanf(filename, "%d_", &version)
	return version
}

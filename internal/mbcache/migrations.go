package mbcache

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

// EnsureSchema applies pending migrations in one transaction. Caches written
// before migrations were tracked already hold rg_cache; the statements are
// idempotent so they adopt such files unchanged.
func (s *Store) EnsureSchema(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return cacheError("ensure schema", "", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cacheError("ensure schema", "", fmt.Errorf("begin migration tx: %w", err))
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return cacheError("ensure schema", "", fmt.Errorf("ensure schema_migrations: %w", err))
	}
	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return cacheError("ensure schema", "", fmt.Errorf("scan migration version: %w", err))
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return cacheError("ensure schema", "", fmt.Errorf("apply migration %s: %w", m.version, err))
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return cacheError("ensure schema", "", fmt.Errorf("record migration %s: %w", m.version, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return cacheError("ensure schema", "", fmt.Errorf("commit migrations: %w", err))
	}
	return nil
}

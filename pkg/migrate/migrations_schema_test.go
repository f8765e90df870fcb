package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dukahub/dukahub-backend/pkg/migrate"
)

func repoMigrationsDir() string {
	return filepath.Join("..", "..", "migrations")
}

func TestRepoMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir(repoMigrationsDir()); err != nil {
		t.Fatalf("migration validation failed: %v", err)
	}
}

func TestCartsMigrationEnforcesSingleOpenCart(t *testing.T) {
	content := readMigration(t, "*_create_carts.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS carts",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_open_user",
		"WHERE status = 'open' AND user_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_carts_open_session",
		"CHECK (user_id IS NOT NULL OR session_id IS NOT NULL)",
		"ON cart_items (cart_id, product_id)",
		"DROP TABLE IF EXISTS carts",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCatalogMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CHECK (stock_qty >= 0)",
		"CHECK (price >= 0)",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationIndexesUnpublishedRows(t *testing.T) {
	content := readMigration(t, "*_create_outbox_events.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS outbox_events",
		"WHERE published_at IS NULL",
		"attempt_count  INTEGER NOT NULL DEFAULT 0",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(repoMigrationsDir(), pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

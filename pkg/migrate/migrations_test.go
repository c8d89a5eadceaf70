package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaigocloud/carebill-backend/pkg/migrate"
)

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestSubscriptionsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_subscriptions_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS subscriptions",
		"organization_id",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_organization_id",
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_status_trial_end",
		"CREATE INDEX IF NOT EXISTS idx_subscriptions_status_next_billing",
		"features",
		"auto_renewal",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestProductsMigrationContainsSchema(t *testing.T) {
	content := readMigration(t, "*_create_products_table.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"price_standard",
		"price_ai",
		"CREATE INDEX IF NOT EXISTS idx_products_active_sort",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
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

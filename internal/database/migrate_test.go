package database

import (
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/onlyskins/onlyskins/migrations"
)

// TestEmbeddedMigrationSource checks that the embedded migration files form a
// source the migrator can read, so a bad filename or a missing down file
// fails here instead of at server startup.
func TestEmbeddedMigrationSource(t *testing.T) {
	d, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("embedded migrations should form a valid source: %v", err)
	}
	defer d.Close()

	first, err := d.First()
	if err != nil {
		t.Fatalf("migration source should have at least one version: %v", err)
	}
	if first != 1 {
		t.Errorf("first migration version = %d, want 1", first)
	}

	if _, _, err := d.ReadUp(first); err != nil {
		t.Errorf("up migration for version %d should be readable: %v", first, err)
	}
	if _, _, err := d.ReadDown(first); err != nil {
		t.Errorf("down migration for version %d should be readable: %v", first, err)
	}
}

package db

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestMigrateIdempotent(t *testing.T) {
	ctx := context.Background()
	database := NewTestDB(t)

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	var count int
	err := database.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'equipment'`,
	).Scan(&count)
	if err != nil {
		t.Fatalf("querying schema: %v", err)
	}
	if count != 1 {
		t.Errorf("expected equipment table, got count %d", count)
	}
}

func TestForeignKeysEnabledOnEveryConnection(t *testing.T) {
	database := NewTestDB(t)
	database.SetMaxIdleConns(4)
	ctx := context.Background()

	// Hold a few connections at once so the pool has to open new ones.
	for i := 0; i < 3; i++ {
		conn, err := database.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn: %v", err)
		}
		defer conn.Close()

		var enabled int
		if err := conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled); err != nil {
			t.Fatalf("PRAGMA foreign_keys: %v", err)
		}
		if enabled != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i, enabled)
		}
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(filepath.Join("data", "inventar.sqlite3"))
	if !strings.HasPrefix(dsn, "file:") {
		t.Errorf("expected file: prefix, got %q", dsn)
	}
	for _, want := range []string{"_txlock=immediate", "foreign_keys%281%29"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("expected %q in %q", want, dsn)
		}
	}
}

package sqlstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"mataam/internal/catalog"
	"mataam/internal/catalog/catalogtest"
)

// openTestStore connects to TEST_DATABASE_URL (a mysql DSN or postgres URL)
// and empties every table. The test is skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := Open(ctx, dsn, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for _, table := range []string{"products", "categories", "delivery_locations", "offers", "synced_images"} {
		if _, err := s.exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
	if err := s.SaveProfile(ctx, catalog.DefaultProfile); err != nil {
		t.Fatalf("reset profile: %v", err)
	}
	return s
}

func TestStoreContract(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) catalog.Store { return openTestStore(t) })
}

func TestDialectDetected(t *testing.T) {
	s := openTestStore(t)
	want, _ := detectDialect(os.Getenv("TEST_DATABASE_URL"))
	if s.dialect != want {
		t.Fatalf("dialect = %s, want %s", s.dialect, want)
	}
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/gridstate/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// fixedNow returns a clock frozen at a known instant.
func fixedNow() func() time.Time {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return at }
}

// seedPeople inserts three rows with ids 1..3.
func seedPeople(t *testing.T, s *Store) {
	t.Helper()
	err := s.Seed(context.Background(), []*ir.Row{
		ir.NewRow(ir.P("id", 1), ir.P("name", "Ana"), ir.P("qty", 3), ir.P("active", true)),
		ir.NewRow(ir.P("id", 2), ir.P("name", "Bob"), ir.P("qty", 1), ir.P("active", false)),
		ir.NewRow(ir.P("id", 3), ir.P("name", "Cara"), ir.P("qty", 2), ir.P("active", true)),
	})
	if err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
}

func names(rows []*ir.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = ir.Stringify(r.Get("name"))
	}
	return out
}

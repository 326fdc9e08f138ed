package grid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()

	if !strings.HasPrefix(a, TempIDPrefix) {
		t.Fatalf("Generate() = %q, want prefix %q", a, TempIDPrefix)
	}
	if a == b {
		t.Errorf("Generate() returned %q twice", a)
	}
	u, err := uuid.Parse(strings.TrimPrefix(a, TempIDPrefix))
	if err != nil {
		t.Fatalf("uuid.Parse() failed: %v", err)
	}
	if u.Version() != 7 {
		t.Errorf("version = %d, want 7", u.Version())
	}
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	if got := g.Generate(); got != "a" {
		t.Errorf("first Generate() = %q, want a", got)
	}
	if got := g.Generate(); got != "b" {
		t.Errorf("second Generate() = %q, want b", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Generate() after exhaustion did not panic")
		}
	}()
	g.Generate()
}

package db

import (
	"sort"
	"strings"
	"testing"
)

func TestMigrationNames(t *testing.T) {
	names, err := migrationNames()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("migrations must list in apply order, got %v", names)
	}
	for _, name := range names {
		if !strings.HasSuffix(name, ".sql") {
			t.Fatalf("unexpected migration file %q", name)
		}
	}
}

func TestNullableJSON(t *testing.T) {
	if got := nullableJSON(nil); got != nil {
		t.Fatalf("nil payload must map to NULL, got %v", got)
	}
	if got := nullableJSON([]byte{}); got != nil {
		t.Fatalf("empty payload must map to NULL, got %v", got)
	}
	if got := nullableJSON([]byte(`{"a":1}`)); got == nil {
		t.Fatal("non-empty payload must pass through")
	}
}

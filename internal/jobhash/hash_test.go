package jobhash_test

import (
	"testing"

	"jobwatch/monitor-service/internal/jobhash"
)

func TestSum_CaseAndWhitespaceInsensitive(t *testing.T) {
	a := jobhash.Sum("Product Manager", "Acme", "NYC")
	b := jobhash.Sum(" product manager ", "ACME", "nyc")
	if a != b {
		t.Errorf("Sum should normalise case and whitespace: %q != %q", a, b)
	}
}

func TestSum_LocationChangesKey(t *testing.T) {
	a := jobhash.Sum("Product Manager", "Acme", "NYC")
	b := jobhash.Sum("Product Manager", "Acme", "SF")
	if a == b {
		t.Error("Sum should differ when location differs")
	}
}

func TestSum_DeterministicAcrossCalls(t *testing.T) {
	first := jobhash.Sum("Associate Product Manager", "Globex", "Remote")
	for i := 0; i < 3; i++ {
		if got := jobhash.Sum("Associate Product Manager", "Globex", "Remote"); got != first {
			t.Fatalf("Sum is not deterministic: %q != %q", got, first)
		}
	}
}

func TestSum_FixedLength(t *testing.T) {
	if got := jobhash.Sum("a", "", "b"); len(got) != 32 {
		t.Errorf("Sum length = %d, want 32 hex chars", len(got))
	}
}

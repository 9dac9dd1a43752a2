package checksum

import "testing"

func TestID_Deterministic(t *testing.T) {
	a := ID("logs/2024-01-02-first.md")
	b := ID("logs/2024-01-02-first.md")
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}
	if len(a) != 40 {
		t.Errorf("len = %d, want 40", len(a))
	}
	if ID("logs/other.md") == a {
		t.Error("different paths should not share an id")
	}
}

func TestID_KnownValue(t *testing.T) {
	// sha1("a.md")
	if got := ID("a.md"); got != "5d48a79a3e66a0b67d03c582501493d256004f1f" {
		t.Errorf("ID(a.md) = %s", got)
	}
}

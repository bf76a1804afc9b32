package character

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveExactAlias(t *testing.T) {
	r := NewResolver(DefaultTable(), 0)

	tests := []struct {
		raw  string
		want string
	}{
		{"Michael", "Michael Scott"},
		{"MICHAEL", "Michael Scott"},
		{"Micheal", "Michael Scott"},
		{"Michel", "Michael Scott"},
		{"Dwight K. Schrute", "Dwight Schrute"},
		{"Diwght", "Dwight Schrute"},
		{"Mr. Michael", "Michael Scott"},
		{"Pam Beesley", "Pam Beesly"},
		{"Jim Halpret", "Jim Halpert"},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.raw)
		if !res.Resolved() {
			t.Errorf("Resolve(%q): unresolved", tt.raw)
			continue
		}
		if res.Character != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.raw, res.Character, tt.want)
		}
		if res.Score != 1.0 {
			t.Errorf("Resolve(%q): exact match score = %v, want 1.0", tt.raw, res.Score)
		}
	}
}

func TestResolveFuzzyTypos(t *testing.T) {
	r := NewResolver(DefaultTable(), 0)

	tests := []struct {
		raw  string
		want string
	}{
		{"Dwigt", "Dwight Schrute"},
		{"Michaell", "Michael Scott"},
		{"Stanly", "Stanley Hudson"},
	}

	for _, tt := range tests {
		res := r.Resolve(tt.raw)
		if res.Character != tt.want {
			t.Errorf("Resolve(%q) = %q (score %.2f), want %q", tt.raw, res.Character, res.Score, tt.want)
		}
		if res.Score >= 1.0 || res.Score < DefaultMatchThreshold {
			t.Errorf("Resolve(%q): fuzzy score %v outside [threshold, 1)", tt.raw, res.Score)
		}
	}
}

func TestResolveVariantsAgree(t *testing.T) {
	r := NewResolver(DefaultTable(), 0)

	variants := []string{"Dwight", "dwight", "DWIGHT", "Dwight K. Schrute", "Dwigt"}
	for _, v := range variants {
		res := r.Resolve(v)
		if res.Character != "Dwight Schrute" {
			t.Errorf("Resolve(%q) = %q, want Dwight Schrute", v, res.Character)
		}
	}
}

func TestResolveUnresolved(t *testing.T) {
	r := NewResolver(DefaultTable(), 0)

	for _, raw := range []string{"Zeke", "Delivery Guy", "", "???"} {
		res := r.Resolve(raw)
		if res.Resolved() {
			t.Errorf("Resolve(%q) = %q, want unresolved", raw, res.Character)
		}
		if res.Raw != raw {
			t.Errorf("Resolve(%q): Raw = %q, want original token", raw, res.Raw)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(DefaultTable(), 0)

	first := r.Resolve("Dwigt")
	for i := 0; i < 50; i++ {
		if got := r.Resolve("Dwigt"); got != first {
			t.Fatalf("iteration %d: %+v != %+v", i, got, first)
		}
	}
}

func TestResolveTieBreakAliasCount(t *testing.T) {
	table, err := NewTable(map[string][]string{
		"Aaa Smith": {"abcde"},
		"Zzz Jones": {"abcdf", "zed"},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	r := NewResolver(table, 0)

	// "abcdg" is one edit from both fuzzy aliases; the character with more
	// aliases wins even though its name sorts later.
	res := r.Resolve("abcdg")
	if res.Character != "Zzz Jones" {
		t.Errorf("Resolve(abcdg) = %q, want Zzz Jones (alias-count tie-break)", res.Character)
	}
}

func TestResolveTieBreakName(t *testing.T) {
	table, err := NewTable(map[string][]string{
		"Aaa Smith": {"abcde"},
		"Zzz Jones": {"abcdf"},
	})
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	r := NewResolver(table, 0)

	res := r.Resolve("abcdg")
	if res.Character != "Aaa Smith" {
		t.Errorf("Resolve(abcdg) = %q, want Aaa Smith (name tie-break)", res.Character)
	}
}

func TestNewTableAliasConflict(t *testing.T) {
	_, err := NewTable(map[string][]string{
		"Michael Scott": {"Mike"},
		"Mike Tyson":    {"Mike"},
	})
	if !errors.Is(err, ErrAliasConflict) {
		t.Fatalf("expected ErrAliasConflict, got %v", err)
	}
}

func TestNewTableEmpty(t *testing.T) {
	if _, err := NewTable(nil); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestNormalizeToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Michael", "michael"},
		{"Mr. Michael  Scott!", "michael scott"},
		{"DWIGHT K. SCHRUTE", "dwight k schrute"},
		{"Dr. Jan", "jan"},
		{"Mrs.", "mrs"},
		{"", ""},
		{"---", ""},
	}

	for _, tt := range tests {
		if got := normalizeToken(tt.in); got != tt.want {
			t.Errorf("normalizeToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadTableYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	data := `characters:
  Bob Vance:
    - Bob
    - Bob Vance Vance Refrigeration
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	if name, ok := table.Canonical("bob"); !ok || name != "Bob Vance" {
		t.Errorf("Canonical(bob) = %q, %v", name, ok)
	}
	if name, ok := table.Canonical("Bob Vance, Vance Refrigeration"); !ok || name != "Bob Vance" {
		t.Errorf("Canonical(full) = %q, %v", name, ok)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultTableValid(t *testing.T) {
	table := DefaultTable()
	if len(table.Characters()) < 20 {
		t.Errorf("default table suspiciously small: %d characters", len(table.Characters()))
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"dwight", "dwight", 0},
		{"dwight", "dwigt", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

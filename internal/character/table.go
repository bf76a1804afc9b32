// Package character resolves raw speaker tokens to canonical show
// characters using an alias table. The table is data, not logic: it is
// loaded once at startup, validated, and immutable afterwards.
package character

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for alias table handling
var (
	ErrAliasConflict = errors.New("alias maps to more than one character")
	ErrEmptyTable    = errors.New("alias table has no characters")
)

// Unknown is the sentinel speaker used when a raw token cannot be resolved
// and the build policy keeps the record anyway.
const Unknown = "Unknown"

// Table maps raw speaker aliases to canonical character names. Lookups are
// case- and punctuation-insensitive.
type Table struct {
	byAlias map[string]string   // normalized alias -> canonical name
	aliases map[string][]string // canonical name -> normalized aliases
}

// tableFile is the YAML shape: canonical name -> list of alias strings.
type tableFile struct {
	Characters map[string][]string `yaml:"characters"`
}

// NewTable builds and validates a table. Each canonical name is implicitly
// an alias of itself. An alias appearing under two characters is a
// configuration error.
func NewTable(characters map[string][]string) (*Table, error) {
	if len(characters) == 0 {
		return nil, ErrEmptyTable
	}

	t := &Table{
		byAlias: make(map[string]string),
		aliases: make(map[string][]string),
	}

	// Deterministic iteration so conflict errors are stable.
	names := make([]string, 0, len(characters))
	for name := range characters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, alias := range append([]string{name}, characters[name]...) {
			key := normalizeToken(alias)
			if key == "" {
				continue
			}
			if owner, ok := t.byAlias[key]; ok {
				if owner != name {
					return nil, fmt.Errorf("%w: %q (%s, %s)", ErrAliasConflict, alias, owner, name)
				}
				continue
			}
			t.byAlias[key] = name
			t.aliases[name] = append(t.aliases[name], key)
		}
	}

	return t, nil
}

// LoadTable reads an alias table from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias table %s: %w", path, err)
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse alias table %s: %w", path, err)
	}

	return NewTable(f.Characters)
}

// Canonical returns the canonical name for a raw token if an exact alias
// match exists.
func (t *Table) Canonical(raw string) (string, bool) {
	name, ok := t.byAlias[normalizeToken(raw)]
	return name, ok
}

// AliasCount returns how many aliases a canonical character has. Used as a
// fuzzy-match tie-break: the character with more known variants wins.
func (t *Table) AliasCount(name string) int {
	return len(t.aliases[name])
}

// Characters returns the canonical names in sorted order.
func (t *Table) Characters() []string {
	names := make([]string, 0, len(t.aliases))
	for name := range t.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// honorifics are stripped from the front of speaker tokens before lookup.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true,
	"dr": true, "prof": true, "professor": true,
}

// normalizeToken lower-cases, strips honorifics and punctuation, and
// collapses whitespace. "Mr. Michael  Scott!" -> "michael scott".
func normalizeToken(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	for len(fields) > 1 && honorifics[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

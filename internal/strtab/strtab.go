// Package strtab implements the process-wide string registry: a
// bidirectional mapping between interned integer ids and UTF-8 strings.
//
// The registry is the single TypeIdentifier source for the whole checking
// session: scalar names, record field keys, abstraction names, and
// compound (dotted) identifiers all flow through it, so that equal
// strings always compare equal ids.
package strtab

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// ID is an interned string identifier (a TypeIdentifier in spec terms).
type ID int32

// Invalid is the zero value, never returned by Intern.
const Invalid ID = 0

// Table is a bidirectional string<->ID registry. The zero value is not
// usable; construct with New. Safe for concurrent use: the scanner/parser
// collaborator may run on its own goroutine and intern identifiers while
// the checker reads names back for diagnostics.
type Table struct {
	mu      sync.RWMutex
	byText  map[string]ID
	byID    []string // index 0 unused (Invalid)
}

// New creates an empty string table.
func New() *Table {
	return &Table{
		byText: make(map[string]ID),
		byID:   []string{""},
	}
}

// Intern normalizes s (strips a UTF-8 BOM, applies Unicode NFC so visually
// identical identifiers compare equal regardless of source encoding) and
// returns its stable id, allocating a fresh one on first sight.
func (t *Table) Intern(s string) ID {
	s = normalize(s)

	t.mu.RLock()
	if id, ok := t.byText[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.byText[s]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, s)
	t.byText[s] = id
	return id
}

// InternCompound registers a dotted compound identifier (e.g. "a.b.c") as a
// single id, built from the ids of its already-interned components so the
// textual form stays the dotted join of its parts.
func (t *Table) InternCompound(parts ...ID) ID {
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = t.Lookup(p)
	}
	return t.Intern(strings.Join(names, "."))
}

// Lookup returns the textual form of id, or "" if id is unknown.
func (t *Table) Lookup(id ID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(id) < 0 || int(id) >= len(t.byID) {
		return ""
	}
	return t.byID[id]
}

// MustLookup is Lookup but panics on an unknown id; useful for internal
// invariants where the id is known to have been interned by this table.
func (t *Table) MustLookup(id ID) string {
	s := t.Lookup(id)
	if s == "" && id != Invalid {
		panic("strtab: unknown id")
	}
	return s
}

func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	if !norm.NFC.IsNormal([]byte(s)) {
		s = norm.NFC.String(s)
	}
	return s
}

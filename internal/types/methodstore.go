package types

import "fmt"

// MethodStore is a per-class ordered table from Abstraction header to a
// typed method. Grounded on the teacher's InstanceEnv coherence-checking
// pattern (internal/types/instances.go in the teacher): Add rejects an
// overlapping registration instead of silently shadowing it, and Lookup
// reports ok=false when nothing matches.
type MethodStore struct {
	// classes preserves registration order so iteration (e.g. for
	// diagnostics) is deterministic.
	classes []string
	methods map[string]map[Header]Term
	order   map[string][]Header
}

// NewMethodStore creates an empty method store.
func NewMethodStore() *MethodStore {
	return &MethodStore{
		methods: make(map[string]map[Header]Term),
		order:   make(map[string][]Header),
	}
}

// Add registers method as className's implementation of header. Per
// design note §9 ("Method dispatch"): operator overloads are registered
// under both the function-name header and the operator-kind header so
// calls via either surface resolve consistently; callers wanting that
// dual registration call Add twice with the two headers.
func (m *MethodStore) Add(className string, header Header, method Term) error {
	tbl, ok := m.methods[className]
	if !ok {
		tbl = make(map[Header]Term)
		m.methods[className] = tbl
		m.classes = append(m.classes, className)
	}
	if _, exists := tbl[header]; exists {
		return fmt.Errorf("overlapping method: %s.%s already registered", className, header)
	}
	tbl[header] = method
	m.order[className] = append(m.order[className], header)
	return nil
}

// Lookup finds className's method for header, if any.
func (m *MethodStore) Lookup(className string, header Header) (Term, bool) {
	tbl, ok := m.methods[className]
	if !ok {
		return nil, false
	}
	t, ok := tbl[header]
	return t, ok
}

// Headers returns the headers registered for className, in registration
// order.
func (m *MethodStore) Headers(className string) []Header {
	return append([]Header{}, m.order[className]...)
}

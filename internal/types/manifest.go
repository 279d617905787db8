package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is an optional, host-supplied extension to the built-in
// library: additional scalar subtypes and additional free functions,
// loaded from YAML. Grounded on the teacher's YAML-driven scenario
// manifest (internal/eval_harness/spec.go's yaml.Unmarshal use), scaled
// down to the much smaller shape this project's library actually needs.
type Manifest struct {
	Scalars   []ManifestScalar   `yaml:"scalars"`
	Functions []ManifestFunction `yaml:"functions"`
}

// ManifestScalar declares an additional scalar and, optionally, its
// immediate supertype in the subtype lattice.
type ManifestScalar struct {
	Name     string `yaml:"name"`
	Supertype string `yaml:"supertype,omitempty"`
	Subscriptable bool `yaml:"subscriptable,omitempty"`
}

// ManifestFunctionParam names one input or output slot. Type is one of
// the built-in scalar names, a scalar declared in the same manifest,
// "list", or "var" (a fresh unconstrained variable, for generic
// functions).
type ManifestFunctionParam struct {
	Type string `yaml:"type"`
}

// ManifestFunction declares an additional free function's signature.
type ManifestFunction struct {
	Name    string                  `yaml:"name"`
	Inputs  []ManifestFunctionParam `yaml:"inputs"`
	Outputs []ManifestFunctionParam `yaml:"outputs"`
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("types: parsing manifest: %w", err)
	}
	return &m, nil
}

// Apply registers every scalar and function the manifest declares into
// lib. Scalars are applied before functions so a function may reference
// a scalar the same manifest just declared. Supertype, if set, must name
// a scalar already known to lib (built-in or earlier in this manifest).
func (m *Manifest) Apply(lib *Library, store *Store) error {
	named := map[string]*Scalar{
		lib.Double.text:       lib.Double,
		lib.SubDouble.text:    lib.SubDouble,
		lib.SubSubDouble.text: lib.SubSubDouble,
		lib.Char.text:         lib.Char,
		lib.String.text:       lib.String,
		lib.Logical.text:      lib.Logical,
	}

	for _, s := range m.Scalars {
		if _, exists := named[s.Name]; exists {
			return fmt.Errorf("types: manifest redeclares scalar %q", s.Name)
		}
		scalar := store.MakeScalar(s.Name)
		if s.Supertype != "" {
			parent, ok := named[s.Supertype]
			if !ok {
				return fmt.Errorf("types: manifest scalar %q names unknown supertype %q", s.Name, s.Supertype)
			}
			lib.subtypeParent[scalar.Name] = parent.Name
		}
		named[s.Name] = scalar
		if s.Subscriptable {
			lib.RegisterSubscriptableScalar(scalar)
		}
	}

	resolveParam := func(p ManifestFunctionParam) (Term, error) {
		switch p.Type {
		case "var":
			return store.MakeVariable(), nil
		case "list":
			return store.MakeList(store.MakeVariable()), nil
		default:
			s, ok := named[p.Type]
			if !ok {
				return nil, fmt.Errorf("types: manifest function references unknown type %q", p.Type)
			}
			return s, nil
		}
	}

	for _, f := range m.Functions {
		var inputs, outputs []Term
		for _, p := range f.Inputs {
			t, err := resolveParam(p)
			if err != nil {
				return err
			}
			inputs = append(inputs, t)
		}
		for _, p := range f.Outputs {
			t, err := resolveParam(p)
			if err != nil {
				return err
			}
			outputs = append(outputs, t)
		}
		header := Header{Kind: Function, Name: f.Name}
		abs := store.MakeAbstraction(header,
			store.MakeInputDestructuredTuple(inputs...),
			store.MakeOutputDestructuredTuple(outputs...))
		lib.FunctionTypes[header] = abs
	}

	return nil
}

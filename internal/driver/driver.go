// Package driver implements the fixed-point external-function discovery
// loop (§6): the unifier queues any header search_function couldn't
// resolve locally as "pending"; the driver consults the search path,
// loads the defining file, generates its signature into the library,
// and hands control back to a fresh unifier pass. The loop repeats
// until a pass makes no progress or the checking run finishes clean.
package driver

import (
	"fmt"

	"github.com/vela-lang/vela/internal/rast"
	"github.com/vela-lang/vela/internal/searchpath"
	"github.com/vela-lang/vela/internal/types"
)

// FileLoader turns a resolved candidate file path into its parsed,
// name-resolved AST. The checker never parses source itself; this
// seam is where a host (cmd/velatype, or a test) plugs in whatever
// front end produced its resolved trees.
type FileLoader interface {
	Load(path string) (*rast.Block, error)
}

// StaticFileLoader serves pre-resolved blocks from an in-memory map,
// used by tests and by any host that has already parsed every file a
// checking run might need.
type StaticFileLoader struct {
	Files map[string]*rast.Block
}

func (s *StaticFileLoader) Load(path string) (*rast.Block, error) {
	b, ok := s.Files[path]
	if !ok {
		return nil, fmt.Errorf("driver: no resolved file for %q", path)
	}
	return b, nil
}

// Driver runs the discovery fixed point over one checking session.
type Driver struct {
	Store      *types.Store
	Library    *types.Library
	SearchPath searchpath.SearchPath
	Loader     FileLoader
}

// New creates a Driver. sp/loader may be nil, in which case pending
// external functions always resolve to UnresolvedFunctionError.
func New(store *types.Store, lib *types.Library, sp searchpath.SearchPath, loader FileLoader) *Driver {
	return &Driver{Store: store, Library: lib, SearchPath: sp, Loader: loader}
}

// Run drives sub to a fixed point: it alternates running a Unifier pass
// and discovering any functions that pass's pending list named, until a
// pass leaves nothing pending, or discovery finds none of the pending
// headers (each is then reported as an UnresolvedFunctionError).
//
// Two error channels come back, matching §6's exit-code policy: the
// slice collects every type error the passes produced (the run keeps
// going past them), while the second value reports an infrastructure
// failure (a file the loader could not serve) that aborts the run.
func (d *Driver) Run(sub *types.Substitution, fromDirectory string) ([]error, error) {
	var errs []error
	for {
		u := types.NewUnifier(d.Library, sub)
		u.Run()
		errs = append(errs, u.Errors...)
		pending := u.Pending.Drain()
		if len(pending) == 0 {
			return errs, nil
		}
		progressed := false
		for _, abs := range pending {
			ok, err := d.discover(abs, fromDirectory)
			if err != nil {
				return errs, err
			}
			if ok {
				progressed = true
			}
		}
		if !progressed {
			// Nothing on the search path defines any of the missing
			// headers, and no pass is going to change that: surface
			// each as an unresolved function and stop. The deferred
			// call equations are dropped with them — their output
			// variables stay unresolved, which is already what the
			// errors say.
			for _, abs := range pending {
				errs = append(errs, &types.UnresolvedFunctionError{Header: abs.Header})
			}
			return errs, nil
		}
		// discover() registers each missing header directly into the
		// library; re-push the equations the unifier set aside (see
		// Unifier.Deferred) so the next pass retries exactly those,
		// now that resolveCallee's library lookup can succeed.
		for _, eq := range u.Deferred {
			sub.Push(eq)
		}
	}
}

// discover resolves one pending abstraction's header against the search
// path, loads its defining file, and registers its generated signature
// into the library. Returns ok=false (no error) when the search path
// simply has nothing for this header, so the caller can distinguish "no
// progress this round" from a hard failure.
func (d *Driver) discover(abs *types.Abstraction, fromDirectory string) (bool, error) {
	if d.SearchPath == nil || d.Loader == nil {
		return false, nil
	}
	name := abs.Header.Name
	if name == "" {
		return false, nil
	}
	if _, ok := d.Library.FunctionTypes[abs.Header]; ok {
		return true, nil
	}
	candidate, ok := d.SearchPath.SearchFor(name, fromDirectory)
	if !ok {
		return false, nil
	}
	block, err := d.Loader.Load(candidate.DefiningFile)
	if err != nil {
		return false, fmt.Errorf("driver: loading %s: %w", candidate.DefiningFile, err)
	}

	discoverySub := types.NewSubstitution()
	gen := types.NewGenerator(d.Store, d.Library, discoverySub)
	if err := gen.GenerateBlock(block); err != nil {
		return false, fmt.Errorf("driver: generating %s: %w", candidate.DefiningFile, err)
	}
	if _, ok := d.Library.FunctionTypes[abs.Header]; !ok {
		return false, fmt.Errorf("driver: %s did not define %s", candidate.DefiningFile, name)
	}
	return true, nil
}

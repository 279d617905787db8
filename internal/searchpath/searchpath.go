// Package searchpath implements the directory-based search-path
// collaborator (§6): locating an unresolved external function by name,
// optionally constrained to a directory (for private-function lookup).
// Grounded on the teacher's internal/module path resolver, adapted from
// whole-module import resolution to single-function lookup by header
// name across private/package/top-level search tiers.
package searchpath

import (
	"os"
	"path/filepath"
	"strings"
)

// Candidate is an opaque, pointer-identified reference to a resolvable
// external definition file: two lookups for the same file return the
// same *Candidate, so the unifier can key its pending-candidate map on
// pointer identity.
type Candidate struct {
	Name         string
	DefiningFile string
}

func (c *Candidate) String() string { return c.Name + "@" + c.DefiningFile }

// SearchPath resolves a function name to the file that (is expected to)
// define it.
type SearchPath interface {
	// SearchFor looks up name, preferring fromDirectory's private
	// functions when fromDirectory != "". Returns ok=false if nothing on
	// the path could define name.
	SearchFor(name string, fromDirectory string) (*Candidate, bool)
}

// DirectorySearchPath resolves names against an ordered list of root
// directories on disk. When the lookup names a fromDirectory, that
// directory's "private" subdirectory is tried first, then fromDirectory
// itself, before the roots (mirrors Vela's private-function visibility
// rule: a function in pkg/private/ is only visible to files under pkg/).
// A root's own "private" subdirectory is never searched.
type DirectorySearchPath struct {
	roots []string
	ext   string

	// cache ensures repeated lookups of the same file return the same
	// *Candidate pointer, preserving the identity contract above.
	cache map[string]*Candidate
}

// NewDirectorySearchPath builds a search path over roots, looking for
// files with the given extension (e.g. ".vl").
func NewDirectorySearchPath(ext string, roots ...string) *DirectorySearchPath {
	return &DirectorySearchPath{roots: roots, ext: ext, cache: make(map[string]*Candidate)}
}

func (d *DirectorySearchPath) intern(name, file string) *Candidate {
	if c, ok := d.cache[file]; ok {
		return c
	}
	c := &Candidate{Name: name, DefiningFile: file}
	d.cache[file] = c
	return c
}

func (d *DirectorySearchPath) fileFor(dir, name string) string {
	path := filepath.Join(dir, name)
	if !strings.HasSuffix(path, d.ext) {
		path += d.ext
	}
	return path
}

func (d *DirectorySearchPath) exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// SearchFor implements SearchPath. Resolution order: fromDirectory's
// private/ subdirectory, fromDirectory itself, then each root in order.
func (d *DirectorySearchPath) SearchFor(name string, fromDirectory string) (*Candidate, bool) {
	if fromDirectory != "" {
		private := d.fileFor(filepath.Join(fromDirectory, "private"), name)
		if d.exists(private) {
			return d.intern(name, private), true
		}
		local := d.fileFor(fromDirectory, name)
		if d.exists(local) {
			return d.intern(name, local), true
		}
	}
	for _, root := range d.roots {
		path := d.fileFor(root, name)
		if d.exists(path) {
			return d.intern(name, path), true
		}
	}
	return nil, false
}

// StaticSearchPath is a fixed in-memory SearchPath, used by tests and by
// hosts that have already resolved their own file layout (so no real
// filesystem walk is needed).
type StaticSearchPath struct {
	byName map[string]*Candidate
}

// NewStaticSearchPath builds a StaticSearchPath from name->file pairs.
func NewStaticSearchPath(entries map[string]string) *StaticSearchPath {
	s := &StaticSearchPath{byName: make(map[string]*Candidate)}
	for name, file := range entries {
		s.byName[name] = &Candidate{Name: name, DefiningFile: file}
	}
	return s
}

func (s *StaticSearchPath) SearchFor(name string, _ string) (*Candidate, bool) {
	c, ok := s.byName[name]
	return c, ok
}

var _ SearchPath = (*DirectorySearchPath)(nil)
var _ SearchPath = (*StaticSearchPath)(nil)

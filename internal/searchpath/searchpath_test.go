package searchpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates path (and its parents) with placeholder contents;
// SearchFor only stats files, so the contents never matter.
func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("function stub\n"), 0o644))
}

// layoutSearchPath builds the three-tier fixture every test here reads:
//
//	root/util.vl                 (search-path root)
//	root/shadowed.vl             (loses to from/private/shadowed.vl)
//	from/local.vl                (the requesting file's own directory)
//	from/private/helper.vl
//	from/private/shadowed.vl
func layoutSearchPath(t *testing.T) (root, from string, sp *DirectorySearchPath) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "root")
	from = filepath.Join(base, "from")
	writeFile(t, filepath.Join(root, "util.vl"))
	writeFile(t, filepath.Join(root, "shadowed.vl"))
	writeFile(t, filepath.Join(from, "local.vl"))
	writeFile(t, filepath.Join(from, "private", "helper.vl"))
	writeFile(t, filepath.Join(from, "private", "shadowed.vl"))
	return root, from, NewDirectorySearchPath(".vl", root)
}

func TestSearchForPrefersPrivateDirectory(t *testing.T) {
	_, from, sp := layoutSearchPath(t)

	c, ok := sp.SearchFor("helper", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(from, "private", "helper.vl"), c.DefiningFile)
}

func TestSearchForPrivateShadowsRoot(t *testing.T) {
	root, from, sp := layoutSearchPath(t)

	c, ok := sp.SearchFor("shadowed", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(from, "private", "shadowed.vl"), c.DefiningFile)

	// Without a requesting directory, only the roots are visible.
	c, ok = sp.SearchFor("shadowed", "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "shadowed.vl"), c.DefiningFile)
}

func TestSearchForFallsBackToLocalDirectory(t *testing.T) {
	_, from, sp := layoutSearchPath(t)

	c, ok := sp.SearchFor("local", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(from, "local.vl"), c.DefiningFile)
}

func TestSearchForFallsBackToRoots(t *testing.T) {
	root, from, sp := layoutSearchPath(t)

	c, ok := sp.SearchFor("util", from)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "util.vl"), c.DefiningFile)

	c, ok = sp.SearchFor("util", "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "util.vl"), c.DefiningFile)
}

func TestSearchForMissReturnsNotFound(t *testing.T) {
	_, from, sp := layoutSearchPath(t)

	_, ok := sp.SearchFor("ghost", from)
	assert.False(t, ok)
}

// TestSearchForCandidateIdentityIsStable pins the §6 contract the
// unifier's pending map depends on: repeated lookups that resolve to
// the same file return the same *Candidate pointer.
func TestSearchForCandidateIdentityIsStable(t *testing.T) {
	_, from, sp := layoutSearchPath(t)

	first, ok := sp.SearchFor("helper", from)
	require.True(t, ok)
	second, ok := sp.SearchFor("helper", from)
	require.True(t, ok)
	assert.Same(t, first, second)
}

func TestStaticSearchPathResolvesByNameOnly(t *testing.T) {
	sp := NewStaticSearchPath(map[string]string{"triple": "triple.vl"})

	c, ok := sp.SearchFor("triple", "anywhere")
	require.True(t, ok)
	assert.Equal(t, "triple.vl", c.DefiningFile)

	_, ok = sp.SearchFor("ghost", "")
	assert.False(t, ok)
}

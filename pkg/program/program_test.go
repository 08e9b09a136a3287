package program

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/project"
)

func writeExec(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func TestFindOnActivatedBuildPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix executable bits")
	}
	root := t.TempDir()
	bin := filepath.Join(root, "opt", "flatc", "bin")
	writeExec(t, filepath.Join(bin, "flatc"))

	g := depgraph.New()
	require.NoError(t, g.AddNode(depgraph.Node{
		Name: "flatbuffers", Version: "24.3.25", Build: true,
		Info: &depgraph.BuildInfo{BinDirs: []string{bin}},
	}))
	p, err := project.Project(g, project.Options{})
	require.NoError(t, err)

	env := activate.NewMapEnviron(map[string]string{"PATH": filepath.Join(root, "usr", "bin")})
	a := activate.New(env)

	_, err = Find("flatc", SearchPath(env.LookupEnv))
	require.True(t, errors.Is(err, errors.ErrCodeProgramNotFound))

	tok, err := a.Activate(activate.SlotBuild, p.BuildEnv)
	require.NoError(t, err)

	got, err := Find("flatc", SearchPath(env.LookupEnv))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(bin, "flatc"), got)

	require.NoError(t, tok.Release())
	_, err = Find("flatc", SearchPath(env.LookupEnv))
	assert.Error(t, err)

	got, err = Find("flatc", SearchPath(env.LookupEnv, p.BuildBinPath...))
	require.NoError(t, err, "tool bin dirs are searched even without activation")
	assert.Equal(t, filepath.Join(bin, "flatc"), got)
}

func TestSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)
	lookup := func(name string) (string, bool) {
		if name == "PATH" {
			return "/a" + sep + sep + "/b" + sep + "/a", true
		}
		return "", false
	}
	assert.Equal(t, []string{"/a", "/b", "/c"}, SearchPath(lookup, "/c", "/b"))
	assert.Equal(t, []string{"/x"}, SearchPath(nil, "/x"))
}

func TestFindSkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix executable bits")
	}
	dir1, dir2 := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir1, "tool"), []byte("data"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir1, "sub"), 0o755))
	writeExec(t, filepath.Join(dir2, "tool"))

	got, err := Find("tool", []string{dir1, dir2})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir2, "tool"), got)

	_, err = Find("sub", []string{dir1})
	assert.True(t, errors.Is(err, errors.ErrCodeProgramNotFound))

	got, err = Find(filepath.Join(dir2, "tool"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir2, "tool"), got)
}

package loader

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/project"
)

// writeArtifact projects nodes and stores the artifact in a temp dir.
func writeArtifact(t *testing.T, settings map[string]string, nodes ...depgraph.Node) string {
	t.Helper()
	g := depgraph.New()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}
	g.SetSettings(settings)
	g.SetConf(map[string]any{"tools.build:defines": []any{"FROM_CONF"}})
	p, err := project.Project(g, project.Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), DefaultArtifact)
	require.NoError(t, p.ConfigSet().SaveFile(path))
	return path
}

func TestMergedTransitiveBundle(t *testing.T) {
	path := writeArtifact(t, nil,
		depgraph.Node{Name: "B", Version: "1", Direct: true, Info: &depgraph.BuildInfo{Libs: []string{"b"}, IncludeDirs: []string{"/b/include"}}, Requires: []string{"A"}},
		depgraph.Node{Name: "A", Version: "1", Transitive: true, Info: &depgraph.BuildInfo{Libs: []string{"spdlog"}, IncludeDirs: []string{"/a/include"}}},
	)
	env, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, env.UseNames())
	assert.Equal(t, []string{"A"}, env.Transitive())
	assert.Equal(t, []string{"B", "A"}, env.ExpandUses([]string{"B"}))

	merged := env.Merged([]string{"B"})
	assert.Equal(t, []string{"b", "spdlog"}, merged["LIB"])
	assert.Equal(t, []string{"/b/include", "/a/include"}, merged["INCLUDES"])

	assert.Equal(t, []string{"spdlog"}, env.Merged([]string{"A"})["LIB"])
}

func TestExpandUsesKeepsUnknownNames(t *testing.T) {
	path := writeArtifact(t, nil,
		depgraph.Node{Name: "fmt", Version: "10", Transitive: true, Info: &depgraph.BuildInfo{Libs: []string{"fmt"}}},
		depgraph.Node{Name: "spdlog", Version: "1", Transitive: true, Info: &depgraph.BuildInfo{Libs: []string{"spdlog"}}, Requires: []string{"fmt"}},
	)
	env, err := Load(path, Options{SkipFlags: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"mylib", "spdlog", "fmt"}, env.ExpandUses([]string{"mylib", "spdlog"}))
	assert.Equal(t, []string{"fmt", "spdlog"}, env.ExpandUses([]string{"fmt", "spdlog"}))
}

func TestLoadAppliesFlags(t *testing.T) {
	path := writeArtifact(t,
		map[string]string{"os": "Linux", "arch": "x86_64", "compiler": "gcc", "build_type": "Debug"},
		depgraph.Node{Name: "zlib", Version: "1", Info: &depgraph.BuildInfo{}},
	)
	env, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "linux", env.Set.String("DEST_OS"))
	assert.Equal(t, []string{"-g", "-O0"}, env.Set.Strings("CXXFLAGS"))
	assert.Equal(t, []string{"FROM_CONF"}, env.Set.Strings("DEFINES"))

	raw, err := Load(path, Options{SkipFlags: true})
	require.NoError(t, err)
	assert.False(t, raw.Set.Has("DEST_OS"))
	assert.Equal(t, []string{"FROM_CONF"}, raw.Config()["DEFINES"])
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.py"), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestContextActivation(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses unix executable bits")
	}
	root := t.TempDir()
	bin := filepath.Join(root, "flatc", "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "flatc"), []byte("#!/bin/sh\n"), 0o755))

	path := writeArtifact(t, nil,
		depgraph.Node{
			Name: "flatbuffers", Version: "24", Build: true,
			Info:     &depgraph.BuildInfo{BinDirs: []string{bin}},
			BuildEnv: []envprofile.Op{{Name: "FLATC_HOME", Kind: envprofile.Define, Value: root}},
		},
		depgraph.Node{
			Name: "sdl", Version: "2", Info: &depgraph.BuildInfo{},
			RunEnv: []envprofile.Op{{Name: "SDL_AUDIODRIVER", Kind: envprofile.Define, Value: "dummy"}},
		},
	)
	env, err := Load(path, Options{SkipFlags: true})
	require.NoError(t, err)

	menv := activate.NewMapEnviron(map[string]string{"PATH": "/nonexistent"})
	ctx := NewContext(env, activate.New(menv))

	got, err := ctx.FindProgram("flatc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(bin, "flatc"), got)

	_, err = ctx.ActivateConanEnv("build")
	require.NoError(t, err)
	_, err = ctx.ActivateConanEnv("run")
	require.NoError(t, err)
	assert.Equal(t, root, menv["FLATC_HOME"])
	assert.Equal(t, "dummy", menv["SDL_AUDIODRIVER"])
	assert.Equal(t, bin+string(os.PathListSeparator)+"/nonexistent", menv["PATH"])

	require.NoError(t, ctx.DeactivateConanEnv())
	assert.Equal(t, map[string]string{"PATH": "/nonexistent"}, map[string]string(menv))

	_, err = ctx.ActivateConanEnv("host")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSlot))
}

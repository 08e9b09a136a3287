package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/cache"
	"github.com/matzehuels/wafconan/pkg/configset"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/loader"
	"github.com/matzehuels/wafconan/pkg/observability"
	"github.com/matzehuels/wafconan/pkg/project"
)

const graphJSON = `{
  "settings": {"os": "Linux", "build_type": "Release"},
  "nodes": [
    {"name": "spdlog", "version": "1.14.1", "direct": true, "cpp_info": {"libs": ["spdlog"]}, "requires": ["fmt"]},
    {"name": "fmt", "version": "10.2.1", "transitive": true, "cpp_info": {"libs": ["fmt"]}}
  ]
}`

func writeGraph(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "build/graph.yml", Split: true}
	require.NoError(t, opts.ValidateAndSetDefaults())
	assert.Equal(t, "yaml", string(opts.Format))
	assert.Equal(t, filepath.Join("build", loader.DefaultArtifact), opts.Output)
	assert.Equal(t, filepath.Join("build", DefaultToolchainOutput), opts.ToolchainOutput)
	assert.NotNil(t, opts.Logger)

	err := (&Options{}).ValidateAndSetDefaults()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = (&Options{Input: "g.json", Format: "xml"}).ValidateAndSetDefaults()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = (&Options{Input: "g.json", Output: "a.py", Split: true, ToolchainOutput: "./a.py"}).ValidateAndSetDefaults()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestGenerate(t *testing.T) {
	input := writeGraph(t, graphJSON)
	r := NewRunner(nil, nil, nil)

	res, err := r.Generate(context.Background(), Options{Input: input})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	assert.True(t, res.Outputs[0].Changed)
	assert.False(t, res.CacheHit)
	assert.NotNil(t, res.Projection)
	assert.Equal(t, []string{"spdlog", "fmt"}, res.UseNames)

	cs, err := configset.LoadFile(filepath.Join(filepath.Dir(input), loader.DefaultArtifact))
	require.NoError(t, err)
	assert.Equal(t, []string{"spdlog", "fmt"}, cs.Strings(project.KeyAllPackages))
	assert.Equal(t, []string{"spdlog", "fmt"}, cs.Strings(project.KeyUsePrefix+"spdlog"))
	assert.Equal(t, "Release", cs.Map(project.KeySettings)["build_type"])

	res, err = r.Generate(context.Background(), Options{Input: input})
	require.NoError(t, err)
	assert.False(t, res.Changed(), "identical artifact is not rewritten")
}

func TestGenerateSplit(t *testing.T) {
	input := writeGraph(t, graphJSON)
	dir := filepath.Dir(input)
	r := NewRunner(nil, nil, nil)

	res, err := r.Generate(context.Background(), Options{Input: input, Split: true})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 2)

	deps, err := configset.LoadFile(filepath.Join(dir, loader.DefaultArtifact))
	require.NoError(t, err)
	assert.True(t, deps.Has(project.KeyAllPackages))
	assert.False(t, deps.Has(project.KeySettings))

	tc, err := configset.LoadFile(filepath.Join(dir, DefaultToolchainOutput))
	require.NoError(t, err)
	assert.True(t, tc.Has(project.KeySettings))
	assert.False(t, tc.Has(project.KeyAllPackages))

	env, err := loader.Load(filepath.Join(dir, loader.DefaultArtifact), loader.Options{}, filepath.Join(dir, DefaultToolchainOutput))
	require.NoError(t, err)
	assert.Equal(t, "linux", env.Set.String("DEST_OS"))
	assert.Equal(t, []string{"spdlog", "fmt"}, env.Merged([]string{"spdlog"})["LIB"])
}

func TestGenerateCache(t *testing.T) {
	input := writeGraph(t, graphJSON)
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, err := r.Generate(ctx, Options{Input: input})
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	want, err := os.ReadFile(first.Outputs[0].Path)
	require.NoError(t, err)

	require.NoError(t, os.Remove(first.Outputs[0].Path))
	second, err := r.Generate(ctx, Options{Input: input})
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Nil(t, second.Projection)
	assert.Equal(t, first.UseNames, second.UseNames)
	assert.True(t, second.Outputs[0].Changed)
	got, err := os.ReadFile(second.Outputs[0].Path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	third, err := r.Generate(ctx, Options{Input: input, Refresh: true})
	require.NoError(t, err)
	assert.False(t, third.CacheHit)

	split, err := r.Generate(ctx, Options{Input: input, Split: true})
	require.NoError(t, err)
	assert.False(t, split.CacheHit, "split artifacts are cached separately")
}

func TestGenerateErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	_, err := r.Generate(ctx, Options{Input: filepath.Join(t.TempDir(), "missing.json")})
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	input := writeGraph(t, `{"nodes": [{"name": "zlib", "version": "1.3.1"}]}`)
	_, err = r.Generate(ctx, Options{Input: input})
	assert.True(t, errors.Is(err, errors.ErrCodeMalformedNode))
	_, statErr := os.Stat(filepath.Join(filepath.Dir(input), loader.DefaultArtifact))
	assert.True(t, os.IsNotExist(statErr), "no artifact is written on failure")

	input = writeGraph(t, `{"nodes": [
		{"name": "a", "version": "1", "cpp_info": {}, "requires": ["b"]},
		{"name": "b", "version": "1", "cpp_info": {}, "requires": ["a"]}
	]}`)
	_, err = r.Generate(ctx, Options{Input: input})
	assert.True(t, errors.Is(err, errors.ErrCodeCyclicDependency))
}

type generatorEvents struct {
	observability.NoopGeneratorHooks
	writes   []bool
	complete int
	lastErr  error
}

func (g *generatorEvents) OnWrite(_ context.Context, _ string, _ int, changed bool) {
	g.writes = append(g.writes, changed)
}

func (g *generatorEvents) OnGenerateComplete(_ context.Context, _ string, _ int, _ time.Duration, err error) {
	g.complete++
	g.lastErr = err
}

func TestGenerateHooks(t *testing.T) {
	events := &generatorEvents{}
	observability.SetGeneratorHooks(events)
	t.Cleanup(observability.Reset)

	input := writeGraph(t, graphJSON)
	r := NewRunner(nil, nil, nil)
	for range 2 {
		_, err := r.Generate(context.Background(), Options{Input: input})
		require.NoError(t, err)
	}
	assert.Equal(t, []bool{true, false}, events.writes)

	_, err := r.Generate(context.Background(), Options{Input: input + ".missing"})
	require.Error(t, err)
	assert.Equal(t, 3, events.complete)
	assert.Error(t, events.lastErr)
}

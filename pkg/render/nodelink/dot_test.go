package nodelink

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/wafconan/pkg/depgraph"
)

func sampleGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	g := depgraph.New()
	for _, n := range []depgraph.Node{
		{Name: "app-core", Version: "1", Direct: true, Info: &depgraph.BuildInfo{}, Requires: []string{"fmt", "ghost"}},
		{Name: "fmt", Version: "10.2.1", Transitive: true, Info: &depgraph.BuildInfo{}},
		{Name: "flatbuffers", Version: "24", Build: true, Info: &depgraph.BuildInfo{}},
	} {
		require.NoError(t, g.AddNode(n))
	}
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{})

	assert.True(t, strings.HasPrefix(dot, "digraph G {\n"))
	assert.Contains(t, dot, `"app-core" [label="app-core", fillcolor=lightyellow];`)
	assert.Contains(t, dot, `"fmt" [label="fmt", penwidth=2.5];`)
	assert.Contains(t, dot, `"build:flatbuffers" [label="flatbuffers", style="rounded,filled,dashed", fillcolor=lightgrey];`)
	assert.Contains(t, dot, `"app-core" -> "fmt";`)
	assert.Contains(t, dot, `"app-core" -> "missing:ghost" [color=red, style=dashed];`)
	assert.Contains(t, dot, `label="ghost (missing)"`)

	assert.Equal(t, dot, ToDOT(sampleGraph(t), Options{}), "output is deterministic")
}

func TestToDOTOptions(t *testing.T) {
	dot := ToDOT(sampleGraph(t), Options{Detailed: true, HideTools: true})
	assert.Contains(t, dot, `label="app-core/1\nuse: app_core"`)
	assert.NotContains(t, dot, "flatbuffers")
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := normalizeViewBox(in)
	assert.True(t, bytes.HasPrefix(out, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`)))

	plain := []byte(`<svg><g/></svg>`)
	assert.Equal(t, plain, normalizeViewBox(plain))
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(sampleGraph(t), Options{}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
	assert.Contains(t, string(svg), "flatbuffers")

	_, err = RenderSVG("digraph {")
	assert.Error(t, err)
}

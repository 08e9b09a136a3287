package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/usename"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds the version and use name to node labels.
	Detailed bool
	// HideTools omits tool requirements.
	HideTools bool
}

// ToDOT converts g to Graphviz DOT source. Output is deterministic for a
// given graph.
func ToDOT(g *depgraph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var nodes []*depgraph.Node
	for _, n := range g.Nodes() {
		if opts.HideTools && n.Build {
			continue
		}
		nodes = append(nodes, n)
	}

	for _, n := range nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Key(), strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	var missing []string
	for _, n := range nodes {
		for _, c := range g.Children(n) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", n.Key(), c.Key())
		}
		for _, name := range g.Missing(n) {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			fmt.Fprintf(&buf, "  %q -> %q [color=red, style=dashed];\n", n.Key(), missingID(name))
		}
	}
	if len(missing) > 0 {
		buf.WriteString("\n")
		for _, name := range missing {
			fmt.Fprintf(&buf, "  %q [label=%q, shape=plaintext, style=\"\", fontcolor=red];\n", missingID(name), name+" (missing)")
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func missingID(name string) string { return "missing:" + name }

func fmtLabel(n *depgraph.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	use := usename.Package(n.Name)
	if n.Build {
		use = usename.Build(use)
	}
	return n.Ref() + "\nuse: " + use
}

func fmtAttrs(n *depgraph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Build:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case n.Direct:
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	if n.Transitive {
		attrs = append(attrs, "penwidth=2.5")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(dot string) ([]byte, error) {
	out, err := render(dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(dot string) ([]byte, error) {
	return render(dot, graphviz.PNG)
}

func render(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's root svg tag with one carrying only a
// zero-origin viewBox and matching size, so the diagram scales when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

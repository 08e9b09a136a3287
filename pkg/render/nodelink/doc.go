// Package nodelink draws a resolved dependency graph as a Graphviz node-link
// diagram.
//
// Host packages are solid boxes and tool requirements are dashed. Packages
// whose usage propagates (the Transitive Set) have a bold outline, and direct
// dependencies are filled. Requires that name no node in the graph point at a
// red "missing" marker, which makes unresolved inputs easy to spot before
// generation fails on them.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. Rendering uses [github.com/goccy/go-graphviz] in-process, so no
// graphviz installation is needed.
package nodelink

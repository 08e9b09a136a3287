// Package depgraph holds the already-resolved dependency graph that wafconan
// projects into a waf ConfigSet.
//
// # Overview
//
// The package manager resolves versions, options and the transitive closure
// before generation runs. This package only models the result: an ordered
// list of [Node] values, each carrying the build information a consumer needs
// (include dirs, libraries, flags, bin dirs) plus the environment operations
// the package contributes to the build and run environments.
//
// Nodes keep the resolver's traversal order. Every later stage iterates
// [Graph.Nodes] in that order, which is what makes generation deterministic.
//
// # Host and tool requirements
//
// A node with Build set is a tool requirement: something executed during the
// build (a code generator, a compiler) rather than linked into it. The same
// package may appear once in each context, so nodes are keyed by [Node.Key],
// which prefixes tool requirements with "build:". Requires always resolve
// within the node's own context.
//
// # Components
//
// Packages that split their libraries into components carry [Node.Components]
// in dependency order, and may leave [Node.Info] nil. A component's Requires
// uses the "<pkg>::<comp>" and "<comp>" reference forms understood by the
// usename package.
//
// # Validation
//
// [Graph.Validate] rejects nodes without a version, nodes with neither build
// info nor components, and cycles between packages. Requires naming packages
// absent from the graph are not errors; they are skipped during projection,
// matching how the resolver drops requirements that do not propagate.
//
// # Concurrency
//
// Graph is not safe for concurrent mutation. A fully built graph may be read
// from multiple goroutines.
package depgraph

package depgraph

import (
	stderrors "errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node name is empty.
	ErrInvalidNodeID = stderrors.New("node name must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same key already exists.
	ErrDuplicateNodeID = stderrors.New("duplicate node")

	// ErrMissingVersion is returned by [Graph.Validate] for an unresolved node.
	ErrMissingVersion = stderrors.New("missing version")

	// ErrMissingBuildInfo is returned by [Graph.Validate] when a node has
	// neither cpp_info nor components.
	ErrMissingBuildInfo = stderrors.New("missing cpp_info")

	// ErrInvalidComponent is returned by [Graph.Validate] for an unnamed or
	// repeated component.
	ErrInvalidComponent = stderrors.New("invalid component")

	// ErrGraphHasCycle is returned by [Graph.Validate] when package requires
	// form a cycle.
	ErrGraphHasCycle = stderrors.New("graph contains a cycle")
)

// BuildPrefix marks the key of a tool requirement node.
const BuildPrefix = "build:"

// BuildInfo is the build information one package or component exposes to
// its consumers. Directory fields may be relative to the package folder.
type BuildInfo struct {
	IncludeDirs     []string `json:"includedirs,omitempty" yaml:"includedirs,omitempty" toml:"includedirs,omitempty"`
	LibDirs         []string `json:"libdirs,omitempty" yaml:"libdirs,omitempty" toml:"libdirs,omitempty"`
	Libs            []string `json:"libs,omitempty" yaml:"libs,omitempty" toml:"libs,omitempty"`
	SystemLibs      []string `json:"system_libs,omitempty" yaml:"system_libs,omitempty" toml:"system_libs,omitempty"`
	Objects         []string `json:"objects,omitempty" yaml:"objects,omitempty" toml:"objects,omitempty"`
	Defines         []string `json:"defines,omitempty" yaml:"defines,omitempty" toml:"defines,omitempty"`
	CFlags          []string `json:"cflags,omitempty" yaml:"cflags,omitempty" toml:"cflags,omitempty"`
	CXXFlags        []string `json:"cxxflags,omitempty" yaml:"cxxflags,omitempty" toml:"cxxflags,omitempty"`
	SharedLinkFlags []string `json:"sharedlinkflags,omitempty" yaml:"sharedlinkflags,omitempty" toml:"sharedlinkflags,omitempty"`
	ExeLinkFlags    []string `json:"exelinkflags,omitempty" yaml:"exelinkflags,omitempty" toml:"exelinkflags,omitempty"`
	Frameworks      []string `json:"frameworks,omitempty" yaml:"frameworks,omitempty" toml:"frameworks,omitempty"`
	FrameworkDirs   []string `json:"frameworkdirs,omitempty" yaml:"frameworkdirs,omitempty" toml:"frameworkdirs,omitempty"`
	BinDirs         []string `json:"bindirs,omitempty" yaml:"bindirs,omitempty" toml:"bindirs,omitempty"`
	ResDirs         []string `json:"resdirs,omitempty" yaml:"resdirs,omitempty" toml:"resdirs,omitempty"`
	SrcDirs         []string `json:"srcdirs,omitempty" yaml:"srcdirs,omitempty" toml:"srcdirs,omitempty"`
	BuildDirs       []string `json:"builddirs,omitempty" yaml:"builddirs,omitempty" toml:"builddirs,omitempty"`

	// Requires lists component references ("pkg::comp" or "comp").
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
}

// Component is a named slice of a package's build information.
type Component struct {
	Name string
	Info BuildInfo
}

// Node is one resolved package.
type Node struct {
	Name    string
	Version string

	// Build marks a tool requirement.
	Build bool
	// Direct is set for requirements declared by the consumer itself.
	Direct bool
	// Transitive is set when consumers of a package using this node must
	// also see its flags.
	Transitive bool

	// PackageFolder anchors relative directories in Info and Components.
	PackageFolder string

	Info       *BuildInfo
	Components []Component

	// Requires lists the package names this node depends on.
	Requires []string

	BuildEnv []envprofile.Op
	RunEnv   []envprofile.Op
}

// Key returns the graph key: the name, prefixed with [BuildPrefix] for tool
// requirements.
func (n *Node) Key() string {
	return KeyOf(n.Name, n.Build)
}

// KeyOf returns the key of the node named name in the given context.
func KeyOf(name string, build bool) string {
	if build {
		return BuildPrefix + name
	}
	return name
}

// HasComponents reports whether the package is split into components.
func (n *Node) HasComponents() bool { return len(n.Components) > 0 }

// Component returns the component with the given name.
func (n *Node) Component(name string) (*Component, bool) {
	for i := range n.Components {
		if n.Components[i].Name == name {
			return &n.Components[i], true
		}
	}
	return nil, false
}

// Ref returns "name/version".
func (n *Node) Ref() string {
	if n.Version == "" {
		return n.Name
	}
	return n.Name + "/" + n.Version
}

// Graph is an ordered collection of resolved nodes plus the settings and
// configuration they were resolved for.
//
// The zero value is not usable; use [New].
type Graph struct {
	nodes    []*Node
	index    map[string]*Node
	settings map[string]string
	conf     map[string]any
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index:    make(map[string]*Node),
		settings: make(map[string]string),
		conf:     make(map[string]any),
	}
}

// AddNode appends n. Returns [ErrInvalidNodeID] for an empty name or
// [ErrDuplicateNodeID] when the key is already taken.
func (g *Graph) AddNode(n Node) error {
	if strings.TrimSpace(n.Name) == "" {
		return ErrInvalidNodeID
	}
	key := n.Key()
	if _, exists := g.index[key]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes = append(g.nodes, node)
	g.index[key] = node
	return nil
}

// Node returns the node with the given key.
func (g *Graph) Node(key string) (*Node, bool) {
	n, ok := g.index[key]
	return n, ok
}

// Lookup returns the node named name in the host or build context.
func (g *Graph) Lookup(name string, build bool) (*Node, bool) {
	return g.Node(KeyOf(name, build))
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.nodes) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Host returns the regular requirements in insertion order.
func (g *Graph) Host() []*Node {
	return g.filter(func(n *Node) bool { return !n.Build })
}

// Tools returns the tool requirements in insertion order.
func (g *Graph) Tools() []*Node {
	return g.filter(func(n *Node) bool { return n.Build })
}

func (g *Graph) filter(keep func(*Node) bool) []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// Children returns the nodes n requires that exist in the graph, in the
// order they are declared. Unknown requires are skipped.
func (g *Graph) Children(n *Node) []*Node {
	var out []*Node
	for _, r := range n.Requires {
		if c, ok := g.Lookup(r, n.Build); ok {
			out = append(out, c)
		}
	}
	return out
}

// Missing returns the requires of n that name no node in its context.
func (g *Graph) Missing(n *Node) []string {
	var out []string
	for _, r := range n.Requires {
		if _, ok := g.Lookup(r, n.Build); !ok {
			out = append(out, r)
		}
	}
	return out
}

// Settings returns the host settings (os, arch, compiler, ...).
// The returned map is never nil and can be modified.
func (g *Graph) Settings() map[string]string { return g.settings }

// SetSettings replaces the settings.
func (g *Graph) SetSettings(s map[string]string) {
	g.settings = maps.Clone(s)
	if g.settings == nil {
		g.settings = make(map[string]string)
	}
}

// Conf returns the global configuration (tools.build:cflags, ...).
// The returned map is never nil and can be modified.
func (g *Graph) Conf() map[string]any { return g.conf }

// SetConf replaces the configuration.
func (g *Graph) SetConf(c map[string]any) {
	g.conf = maps.Clone(c)
	if g.conf == nil {
		g.conf = make(map[string]any)
	}
}

// ConfList returns a configuration entry as a string list.
func (g *Graph) ConfList(key string) []string {
	switch v := g.conf[key].(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			out = append(out, fmt.Sprint(e))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

// Validate checks that every node is resolved and carries build information,
// that components are uniquely named, and that package requires are acyclic.
//
// Validation failures are *errors.Error values with code MALFORMED_NODE or
// CYCLIC_DEPENDENCY, wrapping the sentinel errors of this package.
func (g *Graph) Validate() error {
	for _, n := range g.nodes {
		if err := validateNode(n); err != nil {
			return err
		}
	}
	return g.detectCycles()
}

func validateNode(n *Node) error {
	if err := errors.ValidatePackageName(n.Name); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedNode, err, "node %q", n.Key())
	}
	if strings.TrimSpace(n.Version) == "" {
		return errors.Wrap(errors.ErrCodeMalformedNode, ErrMissingVersion, "node %s", n.Key())
	}
	if n.Info == nil && !n.HasComponents() {
		return errors.Wrap(errors.ErrCodeMalformedNode, ErrMissingBuildInfo, "node %s", n.Ref())
	}
	seen := make(map[string]bool, len(n.Components))
	for _, c := range n.Components {
		if c.Name == "" || seen[c.Name] {
			return errors.Wrap(errors.ErrCodeMalformedNode, ErrInvalidComponent, "node %s: component %q", n.Ref(), c.Name)
		}
		seen[c.Name] = true
	}
	for _, op := range slices.Concat(n.BuildEnv, n.RunEnv) {
		if err := op.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedNode, err, "node %s", n.Ref())
		}
	}
	return nil
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(n *Node) error
	visit = func(n *Node) error {
		color[n.Key()] = gray
		stack = append(stack, n.Name)
		for _, c := range g.Children(n) {
			switch color[c.Key()] {
			case white:
				if err := visit(c); err != nil {
					return err
				}
			case gray:
				start := slices.Index(stack, c.Name)
				path := append(slices.Clone(stack[start:]), c.Name)
				return errors.Wrap(errors.ErrCodeCyclicDependency, ErrGraphHasCycle, "%s", strings.Join(path, " -> "))
			}
		}
		stack = stack[:len(stack)-1]
		color[n.Key()] = black
		return nil
	}

	for _, n := range g.nodes {
		if color[n.Key()] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

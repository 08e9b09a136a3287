package project

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/usename"
)

// WafToolsVar is the build environment variable through which a tool
// requirement ships waf tools. Entries are separated by spaces.
const WafToolsVar = "WAF_TOOLS"

// Options configures [Project].
type Options struct {
	// Logger receives warnings and debug output. Nil discards them.
	Logger *log.Logger
	// Stat inspects WAF_TOOLS entries. Nil means os.Stat.
	Stat func(name string) (fs.FileInfo, error)
}

// Projection is the result of projecting a graph.
type Projection struct {
	// Bundles holds host bundles first, then tool bundles, each in graph
	// order with a package's components before the package itself.
	Bundles []Bundle

	// Host and Build list the use names of host and tool bundles.
	Host  []string
	Build []string

	// Transitive lists, sorted, the use names of bundles whose package is
	// transitive.
	Transitive []string

	// BuildBinPath is the ordered, de-duplicated list of tool bin dirs.
	BuildBinPath []string
	// ToolPaths are directories holding waf tools shipped by tool requirements.
	ToolPaths []string

	BuildEnv envprofile.Profile
	RunEnv   envprofile.Profile

	Settings map[string]string
	// Conf holds the global flags keyed by waf variable (CFLAGS, CXXFLAGS,
	// DEFINES, LINKFLAGS).
	Conf map[string][]string
}

// Bundle returns the bundle with the given use name.
func (p *Projection) Bundle(useName string) (*Bundle, bool) {
	for i := range p.Bundles {
		if p.Bundles[i].UseName == useName {
			return &p.Bundles[i], true
		}
	}
	return nil, false
}

// entry is a bundle under construction.
type entry struct {
	name     string // use name without the build prefix
	pkg      string
	node     *depgraph.Node
	info     *depgraph.BuildInfo
	requires []string
}

// Project validates g and projects every node.
//
// Project fails with a MALFORMED_NODE or CYCLIC_DEPENDENCY error (see
// [depgraph.Graph.Validate]) before producing anything. Two packages or
// components that mangle to the same use name are a MALFORMED_NODE error.
func Project(g *depgraph.Graph, opts Options) (*Projection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	stat := opts.Stat
	if stat == nil {
		stat = os.Stat
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	p := &Projection{
		Settings: g.Settings(),
		Conf:     conanConfig(g),
	}

	for _, side := range []struct {
		build bool
		nodes []*depgraph.Node
	}{{false, g.Host()}, {true, g.Tools()}} {
		entries, order, err := collect(side.nodes)
		if err != nil {
			return nil, err
		}
		for _, name := range order {
			e := entries[name]
			use, err := closure(e, entries, logger)
			if err != nil {
				return nil, err
			}
			b := Bundle{
				UseName:    e.name,
				Package:    e.pkg,
				Ref:        e.node.Ref(),
				Build:      side.build,
				Transitive: e.node.Transitive,
				Vars:       newBundle(e.node, e.info),
				Use:        use,
			}
			if side.build {
				b.UseName = usename.Build(b.UseName)
				b.Package = usename.Build(b.Package)
				for i := range b.Use {
					b.Use[i] = usename.Build(b.Use[i])
				}
				p.Build = append(p.Build, b.UseName)
				p.BuildBinPath = append(p.BuildBinPath, b.Vars[KeyBinDirs]...)
			} else {
				p.Host = append(p.Host, b.UseName)
			}
			if b.Transitive {
				p.Transitive = append(p.Transitive, b.UseName)
			}
			p.Bundles = append(p.Bundles, b)
		}
	}
	slices.Sort(p.Transitive)
	p.BuildBinPath = dedup(p.BuildBinPath)
	p.ToolPaths = wafToolPaths(g.Tools(), stat, logger)
	p.BuildEnv = buildProfile(g.Host(), g.Tools(), p.BuildBinPath)
	p.RunEnv = runProfile(p.Bundles, g.Host())

	logger.Debug("projected graph",
		"host", len(p.Host),
		"build", len(p.Build),
		"transitive", len(p.Transitive))
	return p, nil
}

// collect builds the entries of one context. order is the bundle order:
// per node, its components followed by the package. Two entries mapping to
// the same use name are a MALFORMED_NODE error.
func collect(nodes []*depgraph.Node) (map[string]*entry, []string, error) {
	entries := make(map[string]*entry)
	var order []string
	add := func(e *entry) error {
		if prev, dup := entries[e.name]; dup {
			return errors.New(errors.ErrCodeMalformedNode,
				"use name %s of %s collides with %s", e.name, e.node.Ref(), prev.node.Ref())
		}
		order = append(order, e.name)
		entries[e.name] = e
		return nil
	}

	for _, n := range nodes {
		pkg := usename.Package(n.Name)
		pkgRequires := make([]string, 0, len(n.Requires))
		for _, r := range n.Requires {
			pkgRequires = append(pkgRequires, usename.Package(r))
		}

		if !n.HasComponents() {
			var reqs []string
			if n.Info != nil {
				reqs = mapRequires(n.Info.Requires, n.Name)
			}
			if err := add(&entry{name: pkg, pkg: pkg, node: n, info: n.Info, requires: dedup(slices.Concat(reqs, pkgRequires))}); err != nil {
				return nil, nil, err
			}
			continue
		}

		comps := make([]string, 0, len(n.Components))
		for i := range n.Components {
			c := &n.Components[i]
			name := usename.Component(n.Name, c.Name)
			comps = append(comps, name)
			if err := add(&entry{name: name, pkg: pkg, node: n, info: &c.Info, requires: mapRequires(c.Info.Requires, n.Name)}); err != nil {
				return nil, nil, err
			}
		}
		if err := add(&entry{name: pkg, pkg: pkg, node: n, info: n.Info, requires: dedup(slices.Concat(comps, pkgRequires))}); err != nil {
			return nil, nil, err
		}
	}
	return entries, order, nil
}

func mapRequires(refs []string, parent string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, usename.Of(r, parent))
	}
	return out
}

// closure returns root followed by everything it reaches, ordered so that
// each entry precedes its dependencies.
func closure(root *entry, entries map[string]*entry, logger *log.Logger) ([]string, error) {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)
	var post []string

	var visit func(e *entry) error
	visit = func(e *entry) error {
		if visited[e.name] {
			return nil
		}
		if onPath[e.name] {
			return errors.New(errors.ErrCodeCyclicDependency,
				"cyclic dependency at %s (requires %s)", e.name, strings.Join(e.requires, ", "))
		}
		onPath[e.name] = true
		for _, r := range e.requires {
			dep, ok := entries[r]
			if !ok {
				logger.Debug("skipping unknown requirement", "use", e.name, "requires", r)
				continue
			}
			if dep.pkg != e.pkg && !dep.node.Transitive {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}
		onPath[e.name] = false
		visited[e.name] = true
		post = append(post, e.name)
		return nil
	}

	if err := visit(root); err != nil {
		return nil, err
	}
	slices.Reverse(post)
	return post, nil
}

func conanConfig(g *depgraph.Graph) map[string][]string {
	return map[string][]string{
		"CFLAGS":    g.ConfList("tools.build:cflags"),
		"CXXFLAGS":  g.ConfList("tools.build:cxxflags"),
		"DEFINES":   g.ConfList("tools.build:defines"),
		"LINKFLAGS": slices.Concat(g.ConfList("tools.build:exelinkflags"), g.ConfList("tools.build:sharedlinkflags")),
	}
}

// wafToolPaths resolves the WAF_TOOLS entries of tool requirements. Files
// contribute their directory; missing entries are warned about and skipped.
func wafToolPaths(tools []*depgraph.Node, stat func(string) (fs.FileInfo, error), logger *log.Logger) []string {
	var out []string
	for _, n := range tools {
		env, err := envprofile.New(envprofile.Build, n.BuildEnv...).Compose(func(string) (string, bool) { return "", false })
		if err != nil {
			continue
		}
		v, ok := env[WafToolsVar]
		if !ok || !v.Set {
			continue
		}
		for _, entry := range strings.Fields(v.Value) {
			fi, err := stat(entry)
			if err != nil {
				logger.Warn("waf tool entry not found", "package", n.Ref(), "entry", entry)
				continue
			}
			if fi.IsDir() {
				out = append(out, filepath.Clean(entry))
			} else {
				out = append(out, filepath.Dir(entry))
			}
		}
	}
	return dedup(out)
}

// buildProfile prepends the tool bin dirs to PATH, then appends the build
// environment declared by host requirements, then per tool requirement its
// run environment followed by its build environment, in graph order.
func buildProfile(host, tools []*depgraph.Node, binPath []string) envprofile.Profile {
	p := envprofile.New(envprofile.Build, envprofile.PrependPaths("PATH", binPath)...)
	for _, n := range host {
		p = p.Extend(n.BuildEnv...)
	}
	for _, n := range tools {
		p = p.Extend(n.RunEnv...)
		p = p.Extend(n.BuildEnv...)
	}
	return p
}

// runProfile prepends the host bin dirs to PATH, then appends every host
// requirement's declared run environment in graph order.
func runProfile(bundles []Bundle, host []*depgraph.Node) envprofile.Profile {
	var bins []string
	for _, b := range bundles {
		if !b.Build {
			bins = append(bins, b.Vars[KeyBinDirs]...)
		}
	}
	p := envprofile.New(envprofile.Run, envprofile.PrependPaths("PATH", dedup(bins))...)
	for _, n := range host {
		p = p.Extend(n.RunEnv...)
	}
	return p
}

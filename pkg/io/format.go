package io

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/wafconan/pkg/depgraph"
	"github.com/matzehuels/wafconan/pkg/envprofile"
)

// Format is a graph file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	}
	return FormatJSON
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown graph format %q", s)
}

type graphFile struct {
	Settings map[string]any `json:"settings,omitempty" yaml:"settings,omitempty" toml:"settings,omitempty"`
	Conf     map[string]any `json:"conf,omitempty" yaml:"conf,omitempty" toml:"conf,omitempty"`
	Nodes    []nodeFile     `json:"nodes" yaml:"nodes" toml:"nodes"`
}

type nodeFile struct {
	Name          string              `json:"name" yaml:"name" toml:"name"`
	Version       string              `json:"version" yaml:"version" toml:"version"`
	Build         bool                `json:"build,omitempty" yaml:"build,omitempty" toml:"build,omitempty"`
	Direct        bool                `json:"direct,omitempty" yaml:"direct,omitempty" toml:"direct,omitempty"`
	Transitive    bool                `json:"transitive,omitempty" yaml:"transitive,omitempty" toml:"transitive,omitempty"`
	PackageFolder string              `json:"package_folder,omitempty" yaml:"package_folder,omitempty" toml:"package_folder,omitempty"`
	CppInfo       *depgraph.BuildInfo `json:"cpp_info,omitempty" yaml:"cpp_info,omitempty" toml:"cpp_info,omitempty"`
	Components    []componentFile     `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Requires      []string            `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
	BuildEnv      []envprofile.Op     `json:"buildenv,omitempty" yaml:"buildenv,omitempty" toml:"buildenv,omitempty"`
	RunEnv        []envprofile.Op     `json:"runenv,omitempty" yaml:"runenv,omitempty" toml:"runenv,omitempty"`
}

type componentFile struct {
	Name               string `json:"name" yaml:"name" toml:"name"`
	depgraph.BuildInfo `yaml:",inline"`
}

func toGraph(data graphFile) (*depgraph.Graph, error) {
	g := depgraph.New()
	settings := make(map[string]string, len(data.Settings))
	for k, v := range data.Settings {
		if v == nil {
			continue
		}
		settings[k] = fmt.Sprint(v)
	}
	g.SetSettings(settings)
	g.SetConf(data.Conf)

	for _, n := range data.Nodes {
		nd := depgraph.Node{
			Name:          n.Name,
			Version:       n.Version,
			Build:         n.Build,
			Direct:        n.Direct,
			Transitive:    n.Transitive,
			PackageFolder: n.PackageFolder,
			Info:          n.CppInfo,
			Requires:      n.Requires,
			BuildEnv:      normalizeOps(n.BuildEnv),
			RunEnv:        normalizeOps(n.RunEnv),
		}
		for _, c := range n.Components {
			nd.Components = append(nd.Components, depgraph.Component{Name: c.Name, Info: c.BuildInfo})
		}
		if err := g.AddNode(nd); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
	}
	return g, nil
}

func fromGraph(g *depgraph.Graph) graphFile {
	out := graphFile{Nodes: make([]nodeFile, 0, g.NodeCount())}
	if s := g.Settings(); len(s) > 0 {
		out.Settings = make(map[string]any, len(s))
		for _, k := range slices.Sorted(maps.Keys(s)) {
			out.Settings[k] = s[k]
		}
	}
	if c := g.Conf(); len(c) > 0 {
		out.Conf = maps.Clone(c)
	}
	for _, n := range g.Nodes() {
		nf := nodeFile{
			Name:          n.Name,
			Version:       n.Version,
			Build:         n.Build,
			Direct:        n.Direct,
			Transitive:    n.Transitive,
			PackageFolder: n.PackageFolder,
			CppInfo:       n.Info,
			Requires:      n.Requires,
			BuildEnv:      n.BuildEnv,
			RunEnv:        n.RunEnv,
		}
		for _, c := range n.Components {
			nf.Components = append(nf.Components, componentFile{Name: c.Name, BuildInfo: c.Info})
		}
		out.Nodes = append(out.Nodes, nf)
	}
	return out
}

func normalizeOps(ops []envprofile.Op) []envprofile.Op {
	if len(ops) == 0 {
		return nil
	}
	out := make([]envprofile.Op, len(ops))
	for i, o := range ops {
		if k, err := envprofile.ParseKind(string(o.Kind)); err == nil {
			o.Kind = k
		}
		out[i] = o
	}
	return out
}

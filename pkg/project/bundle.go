package project

import (
	"path/filepath"
	"slices"

	"github.com/matzehuels/wafconan/pkg/depgraph"
)

// Key names one property of a [Bundle].
type Key string

// Bundle keys.
const (
	KeyIncludes      Key = "includes"
	KeyLibPath       Key = "libpath"
	KeyLibs          Key = "libs"
	KeySysLibs       Key = "syslibs"
	KeyDefines       Key = "defines"
	KeyCFlags        Key = "cflags"
	KeyCXXFlags      Key = "cxxflags"
	KeyLinkFlags     Key = "linkflags"
	KeyFrameworks    Key = "frameworks"
	KeyFrameworkPath Key = "frameworkpath"
	KeyBinDirs       Key = "bindirs"
	KeyResDirs       Key = "resdirs"
	KeySrcDirs       Key = "srcdirs"
	KeyBuildDirs     Key = "builddirs"
)

// Keys lists every bundle key in emission order.
var Keys = []Key{
	KeyIncludes, KeyLibPath, KeyLibs, KeySysLibs, KeyDefines, KeyCFlags,
	KeyCXXFlags, KeyLinkFlags, KeyFrameworks, KeyFrameworkPath, KeyBinDirs,
	KeyResDirs, KeySrcDirs, KeyBuildDirs,
}

var wafVars = map[Key]string{
	KeyIncludes:      "INCLUDES",
	KeyLibPath:       "LIBPATH",
	KeyLibs:          "LIB",
	KeySysLibs:       "SYSLIB",
	KeyDefines:       "DEFINES",
	KeyCFlags:        "CFLAGS",
	KeyCXXFlags:      "CXXFLAGS",
	KeyLinkFlags:     "LINKFLAGS",
	KeyFrameworks:    "FRAMEWORK",
	KeyFrameworkPath: "FRAMEWORKPATH",
	KeyBinDirs:       "BINPATH",
	KeyResDirs:       "RESPATH",
	KeySrcDirs:       "SRCPATH",
	KeyBuildDirs:     "BUILDPATH",
}

// Var returns the waf variable prefix for k.
func (k Key) Var() string { return wafVars[k] }

// KeyForVar returns the key whose waf variable is v.
func KeyForVar(v string) (Key, bool) {
	for k, name := range wafVars {
		if name == v {
			return k, true
		}
	}
	return "", false
}

// Bundle is the projection of one package or component.
type Bundle struct {
	// UseName is the name consumers list in "use", including the "build_"
	// prefix for tool requirements.
	UseName string
	// Package is the use name of the owning package.
	Package string
	// Ref is the package reference (name/version).
	Ref string

	Build      bool
	Transitive bool

	// Vars holds the non-empty keys. The libs key already includes system
	// libraries and objects, which is what waf's LIB expects.
	Vars map[Key][]string

	// Use is UseName followed by its dependency closure in topological order.
	Use []string
}

// Get returns the values of k.
func (b *Bundle) Get(k Key) []string { return b.Vars[k] }

func newBundle(n *depgraph.Node, info *depgraph.BuildInfo) map[Key][]string {
	vars := make(map[Key][]string)
	if info == nil {
		return vars
	}
	set := func(k Key, v []string) {
		if len(v) > 0 {
			vars[k] = v
		}
	}
	paths := func(dirs []string) []string {
		return absPaths(n.PackageFolder, dirs)
	}

	set(KeyIncludes, paths(info.IncludeDirs))
	set(KeyLibPath, paths(info.LibDirs))
	set(KeyLibs, slices.Concat(info.Libs, info.SystemLibs, info.Objects))
	set(KeySysLibs, slices.Clone(info.SystemLibs))
	set(KeyDefines, slices.Clone(info.Defines))
	set(KeyCFlags, slices.Clone(info.CFlags))
	set(KeyCXXFlags, slices.Clone(info.CXXFlags))
	set(KeyLinkFlags, dedup(slices.Concat(info.SharedLinkFlags, info.ExeLinkFlags)))
	set(KeyFrameworks, slices.Clone(info.Frameworks))
	set(KeyFrameworkPath, paths(info.FrameworkDirs))
	set(KeyBinDirs, paths(info.BinDirs))
	set(KeyResDirs, paths(info.ResDirs))
	set(KeySrcDirs, paths(info.SrcDirs))
	set(KeyBuildDirs, paths(info.BuildDirs))
	return vars
}

// absPaths anchors relative dirs at base. Without a base, dirs are only
// cleaned, so output never depends on the working directory.
func absPaths(base string, dirs []string) []string {
	if len(dirs) == 0 {
		return nil
	}
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if !filepath.IsAbs(d) && base != "" {
			d = filepath.Join(base, d)
		}
		out = append(out, filepath.Clean(d))
	}
	return out
}

// dedup removes repeated values, keeping the first occurrence.
func dedup(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

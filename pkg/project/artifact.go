package project

import (
	"github.com/matzehuels/wafconan/pkg/configset"
)

// Artifact keys.
const (
	KeyAllPackages      = "ALL_CONAN_PACKAGES"
	KeyAllBuildPackages = "ALL_CONAN_PACKAGES_BUILD"
	KeyTransitive       = "CONAN_TRANSITIVE"
	KeyUsePrefix        = "CONAN_USE_"
	KeyBuildBinPath     = "CONAN_BUILD_BIN_PATH"
	KeyBuildEnv         = "CONAN_BUILDENV"
	KeyRunEnv           = "CONAN_RUNENV"
	KeySettings         = "CONAN_SETTINGS"
	KeyConfig           = "CONAN_CONFIG"
	KeySysPaths         = "DEP_SYS_PATHS"
)

// ConfigSet returns the complete artifact: [Projection.Deps] merged with
// [Projection.Toolchain].
func (p *Projection) ConfigSet() *configset.ConfigSet {
	cs := p.Deps()
	cs.Update(p.Toolchain())
	return cs
}

// Deps returns the dependency half of the artifact: package lists, the
// Transitive Set, every bundle's variables and use list, the tool search
// path and both environment profiles.
func (p *Projection) Deps() *configset.ConfigSet {
	cs := configset.New()
	cs.Set(KeyAllPackages, nonNil(p.Host))
	cs.Set(KeyAllBuildPackages, nonNil(p.Build))
	cs.Set(KeyTransitive, nonNil(p.Transitive))
	cs.Set(KeyBuildBinPath, nonNil(p.BuildBinPath))
	cs.Set(KeyBuildEnv, p.BuildEnv.Rows())
	cs.Set(KeyRunEnv, p.RunEnv.Rows())

	for _, b := range p.Bundles {
		for _, k := range Keys {
			if v := b.Vars[k]; len(v) > 0 {
				cs.Set(k.Var()+"_"+b.UseName, v)
			}
		}
		cs.Set(KeyUsePrefix+b.UseName, b.Use)
	}
	return cs
}

// Toolchain returns the settings half of the artifact: host settings, global
// flags and the waf tool search path.
func (p *Projection) Toolchain() *configset.ConfigSet {
	cs := configset.New()
	settings := p.Settings
	if settings == nil {
		settings = map[string]string{}
	}
	cs.Set(KeySettings, settings)
	conf := make(map[string][]string, len(p.Conf))
	for k, v := range p.Conf {
		conf[k] = nonNil(v)
	}
	cs.Set(KeyConfig, conf)
	cs.Set(KeySysPaths, nonNil(p.ToolPaths))
	return cs
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

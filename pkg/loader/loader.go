package loader

import (
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/configset"
	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/project"
	"github.com/matzehuels/wafconan/pkg/toolchain"
)

// DefaultArtifact is the artifact file name the generator writes by default.
const DefaultArtifact = "conan_waf_config.py"

// Options configures [Load].
type Options struct {
	// SkipFlags disables toolchain flags derived from settings and conf.
	SkipFlags bool
	Logger    *log.Logger
}

// Env is a loaded artifact.
type Env struct {
	Path string
	Set  *configset.ConfigSet
}

// Load reads the artifact at path. One or more extra files (for example a
// separately written toolchain file) may follow; their keys are merged in
// order.
func Load(path string, opts Options, extra ...string) (*Env, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	cs, err := configset.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for _, p := range extra {
		more, err := configset.LoadFile(p)
		if err != nil {
			return nil, err
		}
		cs.Update(more)
	}
	env := &Env{Path: path, Set: cs}

	for _, name := range env.UseNames() {
		logger.Debug("conan usename", "use", name)
	}
	if !opts.SkipFlags {
		if err := toolchain.Apply(cs, env.Settings(), toolchain.Options{Logger: logger}); err != nil {
			return nil, err
		}
		toolchain.ApplyConfig(cs, env.Config())
	}
	return env, nil
}

// FromConfigSet wraps an in-memory ConfigSet without applying flags.
func FromConfigSet(cs *configset.ConfigSet) *Env {
	return &Env{Set: cs}
}

// UseNames returns the host use names.
func (e *Env) UseNames() []string { return e.Set.Strings(project.KeyAllPackages) }

// BuildUseNames returns the tool requirement use names.
func (e *Env) BuildUseNames() []string { return e.Set.Strings(project.KeyAllBuildPackages) }

// Transitive returns the Transitive Set.
func (e *Env) Transitive() []string { return e.Set.Strings(project.KeyTransitive) }

// BuildBinPath returns the tool requirements' bin dirs.
func (e *Env) BuildBinPath() []string { return e.Set.Strings(project.KeyBuildBinPath) }

// ToolPaths returns the directories holding waf tools shipped by tool
// requirements.
func (e *Env) ToolPaths() []string { return e.Set.Strings(project.KeySysPaths) }

// Settings returns CONAN_SETTINGS.
func (e *Env) Settings() map[string]string { return e.Set.Map(project.KeySettings) }

// Config returns CONAN_CONFIG keyed by waf variable.
func (e *Env) Config() map[string][]string {
	out := make(map[string][]string)
	switch m := e.Set.Get(project.KeyConfig).(type) {
	case map[string][]string:
		for k, v := range m {
			out[k] = slices.Clone(v)
		}
	case map[string]any:
		tmp := configset.New()
		for k, v := range m {
			tmp.Set(k, v)
			out[k] = tmp.Strings(k)
		}
	}
	return out
}

// Profile decodes the environment profile for slot.
func (e *Env) Profile(slot activate.Slot) (envprofile.Profile, error) {
	key := project.KeyBuildEnv
	switch slot {
	case activate.SlotBuild:
	case activate.SlotRun:
		key = project.KeyRunEnv
	default:
		return envprofile.Profile{}, errors.New(errors.ErrCodeInvalidSlot, "unknown slot %q", slot)
	}
	return envprofile.FromRows(string(slot), configset.StringLists(e.Set.Get(key)))
}

// ExpandUses appends to uses every CONAN_USE_<name> entry of each listed
// name that is not already present. Names appended along the way are
// expanded as well. Names without a CONAN_USE entry are kept as given.
func (e *Env) ExpandUses(uses []string) []string {
	return ExpandUses(e.Set, uses)
}

// ExpandUses is [Env.ExpandUses] on a bare ConfigSet.
func ExpandUses(cs *configset.ConfigSet, uses []string) []string {
	out := slices.Clone(uses)
	for i := 0; i < len(out); i++ {
		for _, dep := range cs.Strings(project.KeyUsePrefix + out[i]) {
			if !slices.Contains(out, dep) {
				out = append(out, dep)
			}
		}
	}
	return out
}

// Merged returns, per waf variable, the concatenated values of every name
// in the expanded use list, in list order.
func (e *Env) Merged(uses []string) map[string][]string {
	out := make(map[string][]string)
	for _, name := range e.ExpandUses(uses) {
		for _, k := range project.Keys {
			if v := e.Set.Strings(k.Var() + "_" + name); len(v) > 0 {
				out[k.Var()] = append(out[k.Var()], v...)
			}
		}
	}
	return out
}

// Package pipeline runs artifact generation: read a resolved graph, project
// it, serialize the artifact and write it next to the build.
//
// Both the CLI and the generator entry points go through [Runner] so caching,
// logging and write-skipping behave the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Generate(ctx, pipeline.Options{
//	    Input:  "build/graph.json",
//	    Output: "build/conan_waf_config.py",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, out := range res.Outputs {
//	    fmt.Println(out.Path, out.Changed)
//	}
//
// Generation is deterministic, so the artifact is cached under the hash of
// the input bytes and the options that affect it. A write is skipped when
// the output already holds identical bytes, which keeps waf from
// reconfiguring on an unchanged dependency graph.
package pipeline

import (
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wafconan/pkg/cache"
	"github.com/matzehuels/wafconan/pkg/errors"
	gio "github.com/matzehuels/wafconan/pkg/io"
	"github.com/matzehuels/wafconan/pkg/loader"
	"github.com/matzehuels/wafconan/pkg/project"
)

// DefaultToolchainOutput is the toolchain file name used in split mode.
const DefaultToolchainOutput = "conan_waf_toolchain.py"

// Options configures a generation run.
type Options struct {
	// Input is the graph file.
	Input string
	// Format overrides the input format. Empty derives it from Input.
	Format gio.Format
	// Output is the artifact path. Empty means conan_waf_config.py next to
	// Input.
	Output string

	// Split writes the settings and conf keys to ToolchainOutput instead of
	// Output.
	Split           bool
	ToolchainOutput string

	// Refresh bypasses cache reads. The fresh result is still cached.
	Refresh bool

	// Runtime options
	Logger *log.Logger
	Stat   func(name string) (fs.FileInfo, error)

	validated bool
}

// ValidateAndSetDefaults checks required fields and fills defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input graph is required")
	}
	if o.Format == "" {
		o.Format = gio.FormatFromPath(o.Input)
	}
	f, err := gio.ParseFormat(string(o.Format))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "input %s", o.Input)
	}
	o.Format = f
	if o.Output == "" {
		o.Output = filepath.Join(filepath.Dir(o.Input), loader.DefaultArtifact)
	}
	if o.Split && o.ToolchainOutput == "" {
		o.ToolchainOutput = filepath.Join(filepath.Dir(o.Output), DefaultToolchainOutput)
	}
	if o.Split && filepath.Clean(o.ToolchainOutput) == filepath.Clean(o.Output) {
		return errors.New(errors.ErrCodeInvalidInput, "toolchain output must differ from %s", o.Output)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Output is one written (or skipped) file.
type Output struct {
	Path    string
	Size    int
	Changed bool
}

// Result describes a generation run.
type Result struct {
	// InputHash is the SHA-256 of the graph file bytes.
	InputHash string

	// Projection is nil when the artifact came from the cache.
	Projection *project.Projection

	// UseNames and BuildUseNames are the host and tool use names.
	UseNames      []string
	BuildUseNames []string

	Outputs  []Output
	CacheHit bool
	Duration time.Duration
}

// Changed reports whether any output file was rewritten.
func (r *Result) Changed() bool {
	for _, o := range r.Outputs {
		if o.Changed {
			return true
		}
	}
	return false
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wafconan/pkg/buildinfo"
	"github.com/matzehuels/wafconan/pkg/cache"
	"github.com/matzehuels/wafconan/pkg/configset"
	"github.com/matzehuels/wafconan/pkg/errors"
	gio "github.com/matzehuels/wafconan/pkg/io"
	"github.com/matzehuels/wafconan/pkg/observability"
	"github.com/matzehuels/wafconan/pkg/project"
)

// Runner executes generation with caching.
//
// The Runner holds no per-run state; one Runner may serve concurrent
// Generate calls with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the cache entry lifetime. Zero means [cache.TTLArtifact].
	TTL time.Duration
}

// NewRunner creates a runner. A nil keyer means [cache.DefaultKeyer]; a nil
// cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// cached is the cache entry of one generation.
type cached struct {
	Deps          []byte   `json:"deps"`
	Toolchain     []byte   `json:"toolchain,omitempty"`
	UseNames      []string `json:"use_names"`
	BuildUseNames []string `json:"build_use_names"`
	Bundles       int      `json:"bundles"`
}

// Generate reads opts.Input, projects it and writes the artifact.
func (r *Runner) Generate(ctx context.Context, opts Options) (res *Result, err error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	start := time.Now()
	observability.Generator().OnGenerateStart(ctx, opts.Input)
	bundles := 0
	defer func() {
		observability.Generator().OnGenerateComplete(ctx, opts.Input, bundles, time.Since(start), err)
	}()

	input, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph %s", opts.Input)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", opts.Input)
	}

	res = &Result{InputHash: cache.Hash(input)}
	key := r.Keyer.ArtifactKey(res.InputHash, cache.ArtifactKeyOpts{
		Format:    string(opts.Format),
		Split:     opts.Split,
		Generator: buildinfo.Generator(),
	})

	entry, hit := r.lookup(ctx, key, opts.Refresh, logger)
	if !hit {
		p, e, err := generate(input, opts, logger)
		if err != nil {
			return nil, err
		}
		res.Projection = p
		entry = e
		if data, err := json.Marshal(entry); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
				logger.Warn("cache write failed", "err", err)
			}
		}
	}
	res.CacheHit = hit
	res.UseNames = entry.UseNames
	res.BuildUseNames = entry.BuildUseNames
	bundles = entry.Bundles

	files := []struct {
		path string
		data []byte
	}{{opts.Output, entry.Deps}}
	if opts.Split {
		files = append(files, struct {
			path string
			data []byte
		}{opts.ToolchainOutput, entry.Toolchain})
	}
	for _, f := range files {
		out, err := writeIfChanged(f.path, f.data)
		if err != nil {
			return nil, err
		}
		observability.Generator().OnWrite(ctx, out.Path, out.Size, out.Changed)
		if out.Changed {
			logger.Info("wrote artifact", "path", out.Path, "bytes", out.Size)
		} else {
			logger.Debug("artifact unchanged", "path", out.Path)
		}
		res.Outputs = append(res.Outputs, out)
	}

	res.Duration = time.Since(start)
	logger.Info("generated waf configuration",
		"host", len(res.UseNames),
		"tools", len(res.BuildUseNames),
		"cached", hit,
		"duration", res.Duration)
	return res, nil
}

// lookup returns the cached entry for key. Cache errors degrade to a miss.
func (r *Runner) lookup(ctx context.Context, key string, refresh bool, logger *log.Logger) (cached, bool) {
	var entry cached
	if refresh {
		return entry, false
	}
	var (
		data []byte
		hit  bool
	)
	err := cache.RetryWithBackoff(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return entry, false
	}
	if !hit {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil || entry.Deps == nil {
		logger.Debug("discarding corrupt cache entry", "key", key)
		return cached{}, false
	}
	return entry, true
}

// generate projects input and serializes the artifact.
func generate(input []byte, opts Options, logger *log.Logger) (*project.Projection, cached, error) {
	var entry cached
	g, err := gio.ReadGraph(bytes.NewReader(input), opts.Format)
	if err != nil {
		return nil, entry, err
	}
	p, err := project.Project(g, project.Options{Logger: logger, Stat: opts.Stat})
	if err != nil {
		return nil, entry, err
	}

	deps := p.ConfigSet()
	if opts.Split {
		deps = p.Deps()
		if entry.Toolchain, err = p.Toolchain().Bytes(); err != nil {
			return nil, entry, err
		}
	}
	if entry.Deps, err = deps.Bytes(); err != nil {
		return nil, entry, err
	}
	entry.UseNames = p.Host
	entry.BuildUseNames = p.Build
	entry.Bundles = len(p.Bundles)
	return p, entry, nil
}

// writeIfChanged writes data to path unless the file already holds exactly
// those bytes.
func writeIfChanged(path string, data []byte) (Output, error) {
	out := Output{Path: path, Size: len(data)}
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return out, nil
	}
	if err := configset.WriteFileAtomic(path, data); err != nil {
		return out, err
	}
	out.Changed = true
	return out, nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLArtifact
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	gio "github.com/matzehuels/wafconan/pkg/io"
	"github.com/matzehuels/wafconan/pkg/pipeline"
)

type generateOpts struct {
	output          string
	toolchainOutput string
	format          string
	split           bool
	refresh         bool
	noCache         bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [graph]",
		Short: "Project a resolved graph into a waf ConfigSet artifact",
		Long: `Read a resolved dependency graph (JSON, YAML or TOML) and write the waf
artifact: one use-name bundle per dependency, the transitive set, the tool
search path and the build/run environment profiles.

The file is only rewritten when its contents change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("split") {
				opts.split = c.Config.Split
			}
			return c.runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "artifact path (default: <output_dir or graph dir>/<artifact>)")
	cmd.Flags().StringVar(&opts.toolchainOutput, "toolchain-output", "", "toolchain file path in split mode")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "graph format: json, yaml, toml (default: from extension)")
	cmd.Flags().BoolVar(&opts.split, "split", false, "write settings and conf keys to a separate toolchain file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached artifacts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, input string, opts generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	output := opts.output
	if output == "" {
		dir := c.Config.OutputDir
		if dir == "" {
			dir = filepath.Dir(input)
		}
		output = filepath.Join(dir, c.Config.Artifact)
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Generate(ctx, pipeline.Options{
		Input:           input,
		Format:          gio.Format(opts.format),
		Output:          output,
		Split:           opts.split,
		ToolchainOutput: opts.toolchainOutput,
		Refresh:         opts.refresh,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	prog.done("Generated waf configuration")

	for _, out := range res.Outputs {
		if out.Changed {
			printSuccess("Wrote %s", out.Path)
		} else {
			printInfo("Unchanged %s", out.Path)
		}
	}
	printStats(len(res.UseNames), len(res.BuildUseNames), res.CacheHit)
	return nil
}

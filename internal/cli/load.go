package cli

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/loader"
)

type loadOpts struct {
	uses      []string
	extra     []string
	skipFlags bool
	json      bool
}

// loadCommand creates the load command.
func (c *CLI) loadCommand() *cobra.Command {
	var opts loadOpts

	cmd := &cobra.Command{
		Use:   "load [artifact]",
		Short: "Show what a wscript sees after loading an artifact",
		Long: `Load a generated artifact the way waf's configure step does.

Without --use, lists the host and tool use names and the transitive set.
With --use, expands the use list through CONAN_USE_* and prints the merged
variables a task using those names would get.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.Config.Artifact
			if len(args) == 1 {
				path = args[0]
			}
			return c.runLoad(cmd, path, opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.uses, "use", "u", nil, "use names to expand (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&opts.extra, "toolchain", nil, "extra artifact files merged after the first (split mode)")
	cmd.Flags().BoolVar(&opts.skipFlags, "skip-flags", false, "do not apply settings-derived toolchain flags")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")

	return cmd
}

func (c *CLI) runLoad(cmd *cobra.Command, path string, opts loadOpts) error {
	env, err := loader.Load(path, loader.Options{
		SkipFlags: opts.skipFlags,
		Logger:    loggerFromContext(cmd.Context()),
	}, opts.extra...)
	if err != nil {
		return err
	}

	if len(opts.uses) == 0 {
		summary := map[string][]string{
			"host":       env.UseNames(),
			"tools":      env.BuildUseNames(),
			"transitive": env.Transitive(),
		}
		if opts.json {
			return printJSON(summary)
		}
		printKeyValue("host", strings.Join(summary["host"], " "))
		printKeyValue("tools", strings.Join(summary["tools"], " "))
		printKeyValue("transitive", strings.Join(summary["transitive"], " "))
		return nil
	}

	expanded := env.ExpandUses(opts.uses)
	merged := env.Merged(opts.uses)
	if opts.json {
		return printJSON(struct {
			Use  []string            `json:"use"`
			Vars map[string][]string `json:"vars"`
		}{expanded, merged})
	}
	printKeyValue("use", strings.Join(expanded, " "))
	for _, k := range slices.Sorted(maps.Keys(merged)) {
		printKeyValue(k, strings.Join(merged[k], " "))
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

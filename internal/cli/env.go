package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/loader"
)

// Shell dialects for the env command.
const (
	shellPOSIX      = "sh"
	shellFish       = "fish"
	shellPowerShell = "powershell"
	shellJSON       = "json"
)

// envCommand creates the env command.
func (c *CLI) envCommand() *cobra.Command {
	var slot, shell string

	cmd := &cobra.Command{
		Use:   "env [artifact]",
		Short: "Print the environment of a slot as shell code",
		Long: `Compose the build or run environment profile on top of the current
environment and print the result as shell code, e.g.

  eval "$(wafconan env --slot run)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.Config.Artifact
			if len(args) == 1 {
				path = args[0]
			}
			s, err := activate.ParseSlot(slot)
			if err != nil {
				return err
			}
			env, err := loader.Load(path, loader.Options{SkipFlags: true, Logger: loggerFromContext(cmd.Context())})
			if err != nil {
				return err
			}
			profile, err := env.Profile(s)
			if err != nil {
				return err
			}
			vals, err := profile.Compose(os.LookupEnv)
			if err != nil {
				return err
			}
			return writeEnv(shell, vals)
		},
	}

	cmd.Flags().StringVarP(&slot, "slot", "s", "build", "slot: build or run")
	cmd.Flags().StringVar(&shell, "shell", shellPOSIX, "output dialect: sh, fish, powershell, json")

	return cmd
}

// writeEnv prints vals in the given dialect, sorted by name.
func writeEnv(shell string, vals map[string]envprofile.Value) error {
	switch shell {
	case shellPOSIX, shellFish, shellPowerShell:
	case shellJSON:
		out := make(map[string]*string, len(vals))
		for k, v := range vals {
			if v.Set {
				out[k] = &v.Value
			} else {
				out[k] = nil
			}
		}
		return printJSON(out)
	default:
		return fmt.Errorf("unknown shell %q (want sh, fish, powershell or json)", shell)
	}

	for _, k := range slices.Sorted(maps.Keys(vals)) {
		v := vals[k]
		var line string
		switch shell {
		case shellPOSIX:
			line = "unset " + k
			if v.Set {
				line = fmt.Sprintf("export %s=%s", k, quotePOSIX(v.Value))
			}
		case shellFish:
			line = "set -e " + k
			if v.Set {
				line = fmt.Sprintf("set -gx %s %s", k, quotePOSIX(v.Value))
			}
		case shellPowerShell:
			line = "Remove-Item Env:" + k + " -ErrorAction SilentlyContinue"
			if v.Set {
				line = fmt.Sprintf("$env:%s = '%s'", k, strings.ReplaceAll(v.Value, "'", "''"))
			}
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// quotePOSIX single-quotes s for sh and fish.
func quotePOSIX(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/loader"
)

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var slot string

	cmd := &cobra.Command{
		Use:   "run [artifact] -- command [args...]",
		Short: "Run a command with a slot's environment active",
		Long: `Activate the build or run environment profile and run a command in it.
The command is looked up on the activated PATH followed by the tool
requirements' bin dirs.

  wafconan run --slot run -- ./build/app --selftest`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, argv, err := splitDashArgs(cmd, args, c.Config.Artifact)
			if err != nil {
				return err
			}
			if len(argv) == 0 {
				return cmd.Usage()
			}
			return c.runIn(cmd, path, slot, argv)
		},
	}

	cmd.Flags().StringVarP(&slot, "slot", "s", "run", "slot: build or run")

	return cmd
}

func (c *CLI) runIn(cmd *cobra.Command, path, slot string, argv []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	env, err := loader.Load(path, loader.Options{SkipFlags: true, Logger: logger})
	if err != nil {
		return err
	}
	menv := processEnv()
	lc := loader.NewContext(env, activate.New(menv, activate.WithLogger(logger)))

	tok, err := lc.ActivateConanEnv(slot)
	if err != nil {
		return err
	}
	defer func() {
		if err := tok.Release(); err != nil {
			logger.Warn("restore environment", "slot", slot, "err", err)
		}
	}()

	prog, err := resolveProgram(lc, argv[0])
	if err != nil {
		return err
	}
	logger.Debug("running", "program", prog, "slot", slot)
	return execute(ctx, prog, argv[1:], menv.Environ())
}

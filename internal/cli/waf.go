package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/lifecycle"
	"github.com/matzehuels/wafconan/pkg/loader"
	"github.com/matzehuels/wafconan/pkg/program"
)

type wafOpts struct {
	waf            string
	slot           string
	noAutoActivate bool
}

// wafCommand creates the waf command.
func (c *CLI) wafCommand() *cobra.Command {
	var opts wafOpts

	cmd := &cobra.Command{
		Use:   "waf [artifact] -- [waf args...]",
		Short: "Run waf with the build environment active around configure and build",
		Long: `Run waf with auto-activation: the build slot is activated before the
configure and build phases and restored afterwards. Auto-activation is
suppressed by --no-auto-activate, [activation] disable_auto in the config
file, or WAFCONAN_NO_AUTO_ACTIVATE=1.

waf is taken from --waf, ./waf, or the search path (PATH plus the tool
requirements' bin dirs).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.Config.Artifact
			var argv []string
			if cmd.ArgsLenAtDash() >= 0 {
				var err error
				if path, argv, err = splitDashArgs(cmd, args, path); err != nil {
					return err
				}
			} else if len(args) == 1 {
				path = args[0]
			} else if len(args) > 1 {
				return cmd.Usage()
			}
			if !cmd.Flags().Changed("slot") {
				opts.slot = c.Config.Activation.Slot
			}
			opts.noAutoActivate = opts.noAutoActivate || c.Config.Activation.DisableAuto
			return c.runWaf(cmd.Context(), path, argv, opts)
		},
	}

	cmd.Flags().StringVar(&opts.waf, "waf", "", "waf executable")
	cmd.Flags().StringVarP(&opts.slot, "slot", "s", "build", "slot activated around phases")
	cmd.Flags().BoolVar(&opts.noAutoActivate, "no-auto-activate", false, "do not activate any environment")

	return cmd
}

func (c *CLI) runWaf(ctx context.Context, path string, argv []string, opts wafOpts) error {
	logger := loggerFromContext(ctx)

	slot, err := activate.ParseSlot(opts.slot)
	if err != nil {
		return err
	}
	env, err := loader.Load(path, loader.Options{SkipFlags: true, Logger: logger})
	if err != nil {
		return err
	}
	profile, err := env.Profile(slot)
	if err != nil {
		return err
	}

	menv := processEnv()
	a := activate.New(menv, activate.WithLogger(logger))
	lc := loader.NewContext(env, a)

	waf, err := findWaf(lc, opts.waf)
	if err != nil {
		return err
	}

	l := lifecycle.New()
	auto := lifecycle.AutoActivate(l, a, profile, lifecycle.AutoOptions{
		Disabled: opts.noAutoActivate,
		Slot:     slot,
	})
	phase := hookedPhase(l, argv)
	logger.Debug("running waf", "waf", waf, "args", argv, "auto_activate", auto, "phase", phase)

	run := func(ctx context.Context) error {
		return execute(ctx, waf, argv, menv.Environ())
	}
	if phase == "" {
		return run(ctx)
	}
	return l.Run(ctx, phase, run)
}

// findWaf resolves the waf executable: explicit path, ./waf, then the
// context search path.
func findWaf(lc *loader.Context, explicit string) (string, error) {
	if explicit != "" {
		return resolveProgram(lc, explicit)
	}
	if wd, err := os.Getwd(); err == nil {
		if p, err := program.Find("waf", []string{wd}); err == nil {
			return p, nil
		}
	}
	return lc.FindProgram("waf")
}

// hookedPhase returns the first waf command in argv that has hooks, or "".
// waf runs all its commands in one process, so one activation covers them.
func hookedPhase(l *lifecycle.Lifecycle, argv []string) lifecycle.Phase {
	for _, arg := range argv {
		if strings.HasPrefix(arg, "-") || strings.ContainsRune(arg, '=') {
			continue
		}
		p := lifecycle.ParsePhase(arg)
		if pre, _ := l.Hooks(p); pre > 0 {
			return p
		}
	}
	if len(argv) == 0 {
		// bare waf runs the default build command
		if pre, _ := l.Hooks(lifecycle.Build); pre > 0 {
			return lifecycle.Build
		}
	}
	return ""
}

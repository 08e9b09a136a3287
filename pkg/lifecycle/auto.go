package lifecycle

import (
	"context"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/envprofile"
)

// AutoOptions configures [AutoActivate].
type AutoOptions struct {
	// Disabled suppresses auto-activation entirely.
	Disabled bool
	// Slot is the slot to activate. Empty means build.
	Slot activate.Slot
	// Phases lists the phases to wrap. Empty means configure and build.
	Phases []Phase
}

// AutoActivate registers hooks that activate profile in the configured slot
// before each phase and release it afterwards. It reports whether hooks were
// registered.
func AutoActivate(l *Lifecycle, a *activate.Activator, profile envprofile.Profile, opts AutoOptions) bool {
	if opts.Disabled {
		return false
	}
	slot := opts.Slot
	if slot == "" {
		slot = activate.SlotBuild
	}
	phases := opts.Phases
	if len(phases) == 0 {
		phases = []Phase{Configure, Build}
	}

	var (
		tok *activate.Token
		ran bool
	)
	for _, ph := range phases {
		l.Pre(ph, func(context.Context, Phase) error {
			ran = true
			t, err := a.Activate(slot, profile)
			if err != nil {
				return err
			}
			tok = t
			return nil
		})
		l.Post(ph, func(context.Context, Phase) error {
			if !ran {
				// An earlier pre hook failed; the slot is not ours.
				return nil
			}
			ran = false
			if tok != nil {
				t := tok
				tok = nil
				return t.Release()
			}
			// A failed activation leaves its partial record on the slot.
			return a.Deactivate(slot)
		})
	}
	return true
}

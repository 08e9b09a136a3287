// Package lifecycle provides pre- and post-phase hooks around a host build
// tool's phases (configure, build, install, ...).
//
// Rather than patching the host's command classes, callers register hooks
// on a [Lifecycle] and run each phase through [Lifecycle.Run] or a function
// wrapped with [Lifecycle.Wrap]. [AutoActivate] uses this to keep the build
// environment active for the duration of configure and build.
//
// A Lifecycle is not safe for concurrent use. Environment activation
// mutates process-wide state, so phases must run one at a time.
package lifecycle

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase names a host lifecycle phase.
type Phase string

// Host phases.
const (
	Configure Phase = "configure"
	Build     Phase = "build"
	Install   Phase = "install"
	Uninstall Phase = "uninstall"
	Clean     Phase = "clean"
	Dist      Phase = "dist"
)

// ParsePhase maps a command name such as "build" or "build_debug" to its
// phase. Variant suffixes after an underscore are dropped, so every build
// variant shares the build phase hooks.
func ParsePhase(cmd string) Phase {
	base, _, _ := strings.Cut(cmd, "_")
	return Phase(base)
}

// Hook runs before or after a phase.
type Hook func(ctx context.Context, phase Phase) error

// Lifecycle holds hooks per phase.
type Lifecycle struct {
	pre  map[Phase][]Hook
	post map[Phase][]Hook
}

// New returns an empty Lifecycle.
func New() *Lifecycle {
	return &Lifecycle{
		pre:  make(map[Phase][]Hook),
		post: make(map[Phase][]Hook),
	}
}

// Pre registers hook to run before phase. Pre hooks run in registration order.
func (l *Lifecycle) Pre(phase Phase, hook Hook) {
	l.pre[phase] = append(l.pre[phase], hook)
}

// Post registers hook to run after phase. Post hooks run in reverse
// registration order, so paired pre/post hooks nest.
func (l *Lifecycle) Post(phase Phase, hook Hook) {
	l.post[phase] = append(l.post[phase], hook)
}

// Hooks reports how many pre and post hooks phase has.
func (l *Lifecycle) Hooks(phase Phase) (pre, post int) {
	return len(l.pre[phase]), len(l.post[phase])
}

// Run executes the pre hooks of phase, then fn, then the post hooks.
//
// A failing pre hook stops the remaining pre hooks and skips fn. Post hooks
// always run, even when a pre hook or fn failed, so that they can undo what
// the pre hooks did. All errors are joined.
func (l *Lifecycle) Run(ctx context.Context, phase Phase, fn func(context.Context) error) error {
	var errs []error

	failed := false
	for _, h := range l.pre[phase] {
		if err := h(ctx, phase); err != nil {
			errs = append(errs, fmt.Errorf("pre-%s: %w", phase, err))
			failed = true
			break
		}
	}
	if !failed && fn != nil {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	hooks := l.post[phase]
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx, phase); err != nil {
			errs = append(errs, fmt.Errorf("post-%s: %w", phase, err))
		}
	}
	return stderrors.Join(errs...)
}

// Wrap decorates fn so that every call runs through [Lifecycle.Run].
func (l *Lifecycle) Wrap(phase Phase, fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		return l.Run(ctx, phase, fn)
	}
}

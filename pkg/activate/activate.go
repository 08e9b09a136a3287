package activate

import (
	stderrors "errors"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
	"github.com/matzehuels/wafconan/pkg/observability"
)

// Slot names an activation slot.
type Slot string

// Activation slots.
const (
	SlotBuild Slot = envprofile.Build
	SlotRun   Slot = envprofile.Run
)

// Slots lists every slot in activation order.
var Slots = []Slot{SlotBuild, SlotRun}

// ParseSlot maps a slot name to a Slot.
func ParseSlot(s string) (Slot, error) {
	switch Slot(strings.ToLower(strings.TrimSpace(s))) {
	case SlotBuild:
		return SlotBuild, nil
	case SlotRun:
		return SlotRun, nil
	}
	return "", errors.New(errors.ErrCodeInvalidSlot, "unknown slot %q (want build or run)", s)
}

func (s Slot) valid() bool { return s == SlotBuild || s == SlotRun }

// captured is the value a variable had before a slot first touched it.
type captured struct {
	name    string
	value   string
	present bool
}

// Record is the activation record of an active slot.
type Record struct {
	ID      uuid.UUID
	Slot    Slot
	Profile string

	seq     uint64
	entries []captured
	index   map[string]int
}

func newRecord(slot Slot, profile string, seq uint64) *Record {
	return &Record{
		ID:      uuid.New(),
		Slot:    slot,
		Profile: profile,
		seq:     seq,
		index:   make(map[string]int),
	}
}

// capture stores the previous value of name unless it is already recorded.
func (r *Record) capture(name, value string, present bool) {
	if _, ok := r.index[name]; ok {
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, captured{name: name, value: value, present: present})
}

// Variables returns the recorded variable names in first-touch order.
func (r *Record) Variables() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Previous returns the captured value of name and whether it was set.
// ok is false when the record does not cover name.
func (r *Record) Previous(name string) (value string, present, ok bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false, false
	}
	e := r.entries[i]
	return e.value, e.present, true
}

// Activator is the two-slot environment activation state machine.
// It is not safe for concurrent use; see the package documentation.
type Activator struct {
	env    Environ
	slots  map[Slot]*Record
	seq    uint64
	logger *log.Logger
}

// Option configures an Activator.
type Option func(*Activator)

// WithLogger sets the logger used for activation events.
func WithLogger(l *log.Logger) Option {
	return func(a *Activator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Activator over env. A nil env means the process environment.
func New(env Environ, opts ...Option) *Activator {
	if env == nil {
		env = OSEnviron{}
	}
	a := &Activator{
		env:    env,
		slots:  make(map[Slot]*Record),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Environ returns the environment the activator mutates.
func (a *Activator) Environ() Environ { return a.env }

// Active reports whether slot is active.
func (a *Activator) Active(slot Slot) bool { return a.slots[slot] != nil }

// Record returns the activation record of slot, or nil if it is inactive.
func (a *Activator) Record(slot Slot) *Record { return a.slots[slot] }

// Activate applies profile to the environment under slot and returns a
// restoration token. An active slot is deactivated first.
func (a *Activator) Activate(slot Slot, profile envprofile.Profile) (*Token, error) {
	if !slot.valid() {
		return nil, errors.New(errors.ErrCodeInvalidSlot, "unknown slot %q", slot)
	}
	if a.Active(slot) {
		if err := a.Deactivate(slot); err != nil {
			return nil, err
		}
	}

	a.seq++
	rec := newRecord(slot, profile.Name, a.seq)
	a.slots[slot] = rec

	for i, op := range profile.Ops {
		if err := a.apply(rec, op); err != nil {
			err = &errors.PartialError{Applied: i, Err: err}
			a.logger.Warn("activation stopped", "slot", slot, "applied", i, "err", err)
			observability.Activation().OnActivate(string(slot), len(rec.entries), err)
			return nil, err
		}
	}

	a.logger.Debug("activated environment", "slot", slot, "profile", profile.Name, "vars", len(rec.entries))
	observability.Activation().OnActivate(string(slot), len(rec.entries), nil)
	return &Token{ID: rec.ID, Slot: slot, a: a}, nil
}

func (a *Activator) apply(rec *Record, op envprofile.Op) error {
	if err := op.Validate(); err != nil {
		return err
	}
	cur, present := a.env.LookupEnv(op.Name)
	rec.capture(op.Name, cur, present)

	v, set, err := envprofile.Apply(op, cur, present)
	if err != nil {
		return err
	}
	if set {
		err = a.env.Setenv(op.Name, v)
	} else {
		err = a.env.Unsetenv(op.Name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOperation, err, "%s %s", op.Kind, op.Name)
	}
	return nil
}

// Deactivate restores every variable recorded for slot and marks the slot
// inactive. Deactivating an inactive slot is a no-op.
func (a *Activator) Deactivate(slot Slot) error {
	rec := a.slots[slot]
	if rec == nil {
		return nil
	}
	delete(a.slots, slot)

	var errs []error
	for i := len(rec.entries) - 1; i >= 0; i-- {
		e := rec.entries[i]
		var err error
		if e.present {
			err = a.env.Setenv(e.name, e.value)
		} else {
			err = a.env.Unsetenv(e.name)
		}
		if err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeInternal, err, "restore %s", e.name))
		}
	}

	err := stderrors.Join(errs...)
	a.logger.Debug("deactivated environment", "slot", slot, "vars", len(rec.entries))
	observability.Activation().OnDeactivate(string(slot), len(rec.entries), err)
	return err
}

// DeactivateAll deactivates every active slot, most recently activated first.
func (a *Activator) DeactivateAll() error {
	recs := make([]*Record, 0, len(a.slots))
	for _, r := range a.slots {
		recs = append(recs, r)
	}
	slices.SortFunc(recs, func(x, y *Record) int {
		switch {
		case x.seq > y.seq:
			return -1
		case x.seq < y.seq:
			return 1
		}
		return 0
	})

	var errs []error
	for _, r := range recs {
		if err := a.Deactivate(r.Slot); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Token is the restoration token returned by Activate. Holding a token does
// not keep anything alive; releasing it deactivates the slot if the slot is
// still in the activation the token was issued for.
type Token struct {
	ID   uuid.UUID
	Slot Slot

	a *Activator
}

// Release deactivates the token's slot. Releasing a stale token (the slot was
// deactivated or re-activated since) does nothing.
func (t *Token) Release() error {
	if t == nil || t.a == nil {
		return nil
	}
	rec := t.a.slots[t.Slot]
	if rec == nil || rec.ID != t.ID {
		return nil
	}
	return t.a.Deactivate(t.Slot)
}

// Current reports whether the token still refers to the live activation.
func (t *Token) Current() bool {
	if t == nil || t.a == nil {
		return false
	}
	rec := t.a.slots[t.Slot]
	return rec != nil && rec.ID == t.ID
}

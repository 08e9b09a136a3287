package envprofile

import (
	"os"
	"slices"
	"strings"

	"github.com/matzehuels/wafconan/pkg/errors"
)

// Kind is the kind of a variable operation.
type Kind string

// Operation kinds.
const (
	Define  Kind = "define"
	Unset   Kind = "unset"
	Prepend Kind = "prepend"
	Append  Kind = "append"
)

// Well-known profile names.
const (
	Build = "build"
	Run   = "run"
)

var kindAliases = map[string]Kind{
	"define":       Define,
	"set":          Define,
	"define_path":  Define,
	"unset":        Unset,
	"prepend":      Prepend,
	"prepend_path": Prepend,
	"append":       Append,
	"append_path":  Append,
}

// ParseKind maps an operation name to its Kind. It accepts the package
// manager's spellings (define_path, prepend_path, append_path) as aliases.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return "", errors.New(errors.ErrCodeInvalidOperation, "unknown operation kind %q", s)
}

// Valid reports whether k is one of the four operation kinds.
func (k Kind) Valid() bool {
	switch k {
	case Define, Unset, Prepend, Append:
		return true
	}
	return false
}

// Op is a single variable operation.
type Op struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Kind  Kind   `json:"op" yaml:"op" toml:"op"`
	Value string `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	// Separator overrides the list separator for prepend/append.
	Separator string `json:"separator,omitempty" yaml:"separator,omitempty" toml:"separator,omitempty"`
}

// Validate checks the variable name and operation kind.
func (o Op) Validate() error {
	if err := errors.ValidateVariableName(o.Name); err != nil {
		return err
	}
	if !o.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidOperation, "%s: unknown operation kind %q", o.Name, o.Kind)
	}
	return nil
}

func (o Op) separator() string {
	if o.Separator != "" {
		return o.Separator
	}
	return string(os.PathListSeparator)
}

// Apply computes the value of o.Name after applying o to its current value.
// present reports whether the variable exists before the operation; the
// returned bool reports whether it exists afterwards.
//
// Prepending or appending to an absent or empty variable yields just the
// operation's value, so no dangling separator is produced.
func Apply(o Op, cur string, present bool) (string, bool, error) {
	switch o.Kind {
	case Define:
		return o.Value, true, nil
	case Unset:
		return "", false, nil
	case Prepend:
		if !present || cur == "" {
			return o.Value, true, nil
		}
		return o.Value + o.separator() + cur, true, nil
	case Append:
		if !present || cur == "" {
			return o.Value, true, nil
		}
		return cur + o.separator() + o.Value, true, nil
	}
	return cur, present, errors.New(errors.ErrCodeInvalidOperation, "%s: unknown operation kind %q", o.Name, o.Kind)
}

// Profile is a named, ordered list of variable operations.
type Profile struct {
	Name string
	Ops  []Op
}

// New returns a profile with the given name and operations.
func New(name string, ops ...Op) Profile {
	return Profile{Name: name, Ops: ops}
}

// Empty reports whether the profile has no operations.
func (p Profile) Empty() bool { return len(p.Ops) == 0 }

// Validate checks every operation and returns the first failure.
func (p Profile) Validate() error {
	for i, o := range p.Ops {
		if err := o.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOperation, err, "profile %s: operation %d", p.Name, i)
		}
	}
	return nil
}

// Variables returns the distinct variable names the profile touches, in
// first-touch order.
func (p Profile) Variables() []string {
	var names []string
	for _, o := range p.Ops {
		if !slices.Contains(names, o.Name) {
			names = append(names, o.Name)
		}
	}
	return names
}

// LookupFunc returns the current value of a variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// Value is a composed variable value. Set is false when the profile leaves
// the variable unset.
type Value struct {
	Value string
	Set   bool
}

// Compose applies the profile on top of lookup and returns the resulting
// value of every touched variable. Nothing is mutated.
func (p Profile) Compose(lookup LookupFunc) (map[string]Value, error) {
	out := make(map[string]Value)
	for _, o := range p.Ops {
		cur, ok := out[o.Name]
		if !ok {
			v, set := lookup(o.Name)
			cur = Value{Value: v, Set: set}
		}
		v, set, err := Apply(o, cur.Value, cur.Set)
		if err != nil {
			return nil, err
		}
		out[o.Name] = Value{Value: v, Set: set}
	}
	return out, nil
}

// Extend returns a copy of p with ops appended.
func (p Profile) Extend(ops ...Op) Profile {
	return Profile{Name: p.Name, Ops: append(slices.Clone(p.Ops), ops...)}
}

// PrependPaths returns one prepend operation per directory, ordered so that
// dirs[0] ends up first in the variable.
func PrependPaths(name string, dirs []string) []Op {
	ops := make([]Op, 0, len(dirs))
	for i := len(dirs) - 1; i >= 0; i-- {
		ops = append(ops, Op{Name: name, Kind: Prepend, Value: dirs[i]})
	}
	return ops
}

// Rows encodes the profile as [name, op, value] rows, with a fourth element
// when the operation overrides the list separator.
func (p Profile) Rows() [][]string {
	rows := make([][]string, 0, len(p.Ops))
	for _, o := range p.Ops {
		row := []string{o.Name, string(o.Kind), o.Value}
		if o.Separator != "" {
			row = append(row, o.Separator)
		}
		rows = append(rows, row)
	}
	return rows
}

// FromRows decodes rows written by [Profile.Rows]. Operation kinds are
// parsed with [ParseKind].
func FromRows(name string, rows [][]string) (Profile, error) {
	p := Profile{Name: name}
	for i, r := range rows {
		if len(r) < 2 || len(r) > 4 {
			return Profile{}, errors.New(errors.ErrCodeInvalidOperation, "profile %s: row %d has %d fields", name, i, len(r))
		}
		k, err := ParseKind(r[1])
		if err != nil {
			return Profile{}, errors.Wrap(errors.ErrCodeInvalidOperation, err, "profile %s: row %d", name, i)
		}
		o := Op{Name: r[0], Kind: k}
		if len(r) > 2 {
			o.Value = r[2]
		}
		if len(r) > 3 {
			o.Separator = r[3]
		}
		p.Ops = append(p.Ops, o)
	}
	return p, nil
}

package activate

import (
	"maps"
	"os"
	"slices"
)

// Environ is the environment an Activator mutates.
type Environ interface {
	LookupEnv(key string) (string, bool)
	Setenv(key, value string) error
	Unsetenv(key string) error
}

// OSEnviron is the process environment.
type OSEnviron struct{}

func (OSEnviron) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (OSEnviron) Setenv(key, value string) error      { return os.Setenv(key, value) }
func (OSEnviron) Unsetenv(key string) error           { return os.Unsetenv(key) }

// MapEnviron is an in-memory environment. The zero value is not usable; use
// NewMapEnviron.
type MapEnviron map[string]string

// NewMapEnviron returns a MapEnviron seeded with kv.
func NewMapEnviron(kv map[string]string) MapEnviron {
	m := MapEnviron{}
	maps.Copy(m, kv)
	return m
}

func (m MapEnviron) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func (m MapEnviron) Setenv(key, value string) error {
	m[key] = value
	return nil
}

func (m MapEnviron) Unsetenv(key string) error {
	delete(m, key)
	return nil
}

// Environ returns the contents as sorted KEY=VALUE pairs, the form used by
// os/exec.
func (m MapEnviron) Environ() []string {
	out := make([]string, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, k+"="+m[k])
	}
	return out
}

var (
	_ Environ = OSEnviron{}
	_ Environ = MapEnviron{}
)

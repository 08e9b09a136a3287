package configset

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/wafconan/pkg/errors"
)

// ConfigSet is an ordered-on-output key/value table of Python-literal values.
// The zero value is not usable; call [New].
type ConfigSet struct {
	table map[string]any
}

// New returns an empty ConfigSet.
func New() *ConfigSet {
	return &ConfigSet{table: make(map[string]any)}
}

// Set stores v under key, replacing any previous value.
func (c *ConfigSet) Set(key string, v any) {
	c.table[key] = v
}

// Get returns the value stored under key, or nil.
func (c *ConfigSet) Get(key string) any {
	return c.table[key]
}

// Has reports whether key is present.
func (c *ConfigSet) Has(key string) bool {
	_, ok := c.table[key]
	return ok
}

// Delete removes key.
func (c *ConfigSet) Delete(key string) {
	delete(c.table, key)
}

// Len returns the number of keys.
func (c *ConfigSet) Len() int {
	return len(c.table)
}

// Keys returns all keys in sorted order.
func (c *ConfigSet) Keys() []string {
	return slices.Sorted(maps.Keys(c.table))
}

// String returns the value under key when it is a string.
func (c *ConfigSet) String(key string) string {
	s, _ := c.table[key].(string)
	return s
}

// Strings returns the value under key as a string list. A scalar string
// becomes a one-element list; non-string list elements are skipped.
func (c *ConfigSet) Strings(key string) []string {
	return toStrings(c.table[key])
}

// Map returns the dict stored under key with its values stringified.
func (c *ConfigSet) Map(key string) map[string]string {
	switch m := c.table[key].(type) {
	case map[string]string:
		return maps.Clone(m)
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = stringify(v)
		}
		return out
	}
	return nil
}

// AppendValue appends vals to the list under key, creating it if needed.
// A scalar string already stored becomes the first list element.
func (c *ConfigSet) AppendValue(key string, vals ...string) {
	c.table[key] = append(toStrings(c.table[key]), vals...)
}

// AppendUnique appends each of vals not already in the list under key.
func (c *ConfigSet) AppendUnique(key string, vals ...string) {
	cur := toStrings(c.table[key])
	for _, v := range vals {
		if !slices.Contains(cur, v) {
			cur = append(cur, v)
		}
	}
	c.table[key] = cur
}

// PrependValue inserts vals, in order, at the front of the list under key.
func (c *ConfigSet) PrependValue(key string, vals ...string) {
	c.table[key] = append(slices.Clone(vals), toStrings(c.table[key])...)
}

// Update copies every key of other into c.
func (c *ConfigSet) Update(other *ConfigSet) {
	maps.Copy(c.table, other.table)
}

// Clone returns a shallow copy.
func (c *ConfigSet) Clone() *ConfigSet {
	return &ConfigSet{table: maps.Clone(c.table)}
}

// Store writes every key as "KEY = literal" with keys sorted.
func (c *ConfigSet) Store(w io.Writer) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write configset")
	}
	return nil
}

// Bytes returns the serialized form written by [ConfigSet.Store].
func (c *ConfigSet) Bytes() ([]byte, error) {
	var b strings.Builder
	for _, k := range c.Keys() {
		if err := errors.ValidateConfigSetKey(k); err != nil {
			return nil, err
		}
		b.WriteString(k)
		b.WriteString(" = ")
		if err := writeLiteral(&b, c.table[k]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfigSet, err, "key %s", k)
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// SaveFile writes the ConfigSet to path through a temporary file in the same
// directory, so readers never observe a partially written artifact.
func (c *ConfigSet) SaveFile(path string) error {
	data, err := c.Bytes()
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic replaces path with data via temp file and rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFilesystem, err, "create temp file in %s", dir)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeFilesystem, err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeFilesystem, err, "close %s", name)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeFilesystem, err, "chmod %s", name)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return errors.Wrap(errors.ErrCodeFilesystem, err, "rename to %s", path)
	}
	return nil
}

// Load parses a ConfigSet file. Blank lines and lines starting with '#' are
// ignored; every other line must be "KEY = literal".
func Load(r io.Reader) (*ConfigSet, error) {
	c := New()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, lit, ok := strings.Cut(text, " = ")
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfigSet, "line %d: expected KEY = VALUE", line)
		}
		key = strings.TrimSpace(key)
		if err := errors.ValidateConfigSetKey(key); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfigSet, err, "line %d", line)
		}
		v, err := parseLiteral(lit)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfigSet, err, "line %d: key %s", line, key)
		}
		c.table[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read configset")
	}
	return c, nil
}

// LoadFile reads and parses the ConfigSet file at path.
func LoadFile(path string) (*ConfigSet, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "configset %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFilesystem, err, "read %s", path)
	}
	c, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func toStrings(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		return []string{x}
	case []string:
		return slices.Clone(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringLists converts a decoded list of lists into [][]string.
func StringLists(v any) [][]string {
	switch x := v.(type) {
	case [][]string:
		return x
	case []any:
		out := make([][]string, 0, len(x))
		for _, e := range x {
			out = append(out, toStrings(e))
		}
		return out
	}
	return nil
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	var b strings.Builder
	if err := writeLiteral(&b, v); err != nil {
		return fmt.Sprint(v)
	}
	return b.String()
}

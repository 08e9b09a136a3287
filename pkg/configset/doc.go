// Package configset reads and writes waf ConfigSet files.
//
// A ConfigSet file is what waf's ConfigSet.store produces and
// ConfigSet.load (or conf.env.load) consumes: one "KEY = VALUE" line per key,
// keys sorted, each value a Python literal. Emitting this format directly lets
// a wscript load generator output with the stock ConfigSet loader, without a
// custom parser on the waf side.
//
// Values are Go strings, bools, integers, floats, nil, []string, []any and
// maps with string keys. Strings are rendered the way Python's ascii()
// renders them, dict keys are sorted, so [ConfigSet.Store] is byte-for-byte
// deterministic for equal contents.
//
// [Load] parses the same literal subset back: strings (either quote, with
// escapes), integers, floats, True/False/None, lists, tuples, sets and dicts.
// Tuples and sets decode to []any; dicts decode to map[string]any. Strings
// that are not valid UTF-8 are rejected on store.
package configset

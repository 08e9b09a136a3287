// Package usename maps package and component references onto waf "use"
// names.
//
// A reference takes one of three forms:
//
//	<pkg>::<pkg>   the whole package          → pkg
//	<pkg>::<comp>  a component of pkg         → pkg_comp
//	<comp>         a component of the parent  → parent_comp
//
// Every character that cannot appear in a ConfigSet key is replaced by an
// underscore, so "openssl-dev::crypto" becomes "openssl_dev_crypto".
package usename

import "strings"

// BuildPrefix is prepended to the use names of tool requirements so they
// never collide with host packages of the same name.
const BuildPrefix = "build_"

// Sep separates package and component in a reference.
const Sep = "::"

// Of returns the use name for ref. parent is the package that declares the
// reference and only matters for bare component names; pass "" for a
// package-level name.
func Of(ref, parent string) string {
	if pkg, comp, ok := strings.Cut(ref, Sep); ok {
		if pkg == comp {
			return sanitize(pkg)
		}
		if pkg == "" {
			pkg = parent
		}
		return sanitize(pkg + "_" + comp)
	}
	if parent != "" {
		return sanitize(parent + "_" + ref)
	}
	return sanitize(ref)
}

// Package returns the use name of a package as a whole.
func Package(name string) string {
	return sanitize(name)
}

// Component returns the use name of component comp of package pkg.
func Component(pkg, comp string) string {
	return Of(comp, pkg)
}

// Build returns the use name of a tool requirement.
func Build(name string) string {
	return BuildPrefix + name
}

// IsBuild reports whether name is a tool requirement use name.
func IsBuild(name string) bool {
	return strings.HasPrefix(name, BuildPrefix)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}

// Package project projects a resolved dependency graph onto waf's "use"
// variable model.
//
// # Bundles
//
// waf's C/C++ task generators pick up flags for every name in their use
// list from environment variables named <VAR>_<name>:
//
//	bld(features="cxx cxxprogram", source="main.cpp", use="openssl")
//	// reads INCLUDES_openssl, LIB_openssl, LIBPATH_openssl, ...
//
// [Project] turns every node of a [depgraph.Graph] into one [Bundle] per use
// name: one per package, plus one per component for packages split into
// components (the package bundle then requires all of its components). A
// bundle maps a fixed set of [Key] values to string lists; each key has a
// waf variable (see [Key.Var]).
//
// # Use Lists
//
// Each bundle also carries its use list: the bundle itself followed by the
// bundles it depends on, in topological order. A consumer that lists a use
// name receives the flags of the whole list (see the loader package). The
// walk follows requires inside a package unconditionally and crosses into
// another package only when that package is transitive. A cycle is a
// CYCLIC_DEPENDENCY error.
//
// # Tool Requirements
//
// Tool requirements are projected under the "build_" prefix and listed
// separately. Their bin dirs form the program search path and are
// prepended to PATH in the build environment profile; their declared build
// environment follows. WAF_TOOLS entries in their build environment name waf
// tool files or directories to add to the tool search path.
//
// # Determinism
//
// Bundles follow the graph's node order, lists keep declaration order with
// duplicates removed where noted, and the ConfigSet store sorts keys. The
// same graph always yields the same artifact bytes.
package project

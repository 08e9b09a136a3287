// Package envprofile models the environment profiles a resolved dependency
// graph contributes to the build and run contexts.
//
// A [Profile] is an ordered list of [Op] values. Each operation targets one
// variable and either defines it, unsets it, or prepends/appends an entry to a
// path-like list using a separator (the platform's list separator unless the
// operation names its own).
//
// Profiles are pure data: [Profile.Compose] computes the environment that
// would result from applying a profile on top of a lookup function without
// mutating anything. Splicing a profile into the live process environment is
// the job of the activate package.
package envprofile

// Package loader is the configure-time side of wafconan: it loads a
// generated artifact into a waf environment and answers the questions a
// wscript asks while configuring.
//
// # Loading
//
//	env, err := loader.Load("build/conan_waf_config.py", loader.Options{})
//
// [Load] reads the ConfigSet, then (unless Options.SkipFlags is set) derives
// toolchain values from CONAN_SETTINGS and appends the global flags from
// CONAN_CONFIG, like conf.load_conan() does inside waf.
//
// # Use Expansion
//
// A task generator that lists "spdlog" in its use attribute must also link
// everything spdlog propagates. [ExpandUses] appends the CONAN_USE_<name>
// entries of every listed name, and [Env.Merged] concatenates the per-name
// variables of the expanded list the way waf's process_use does.
//
// # Environment Control
//
// [Context] pairs a loaded [Env] with an [activate.Activator] and exposes
// ActivateConanEnv and DeactivateConanEnv, plus FindProgram, which searches
// the (possibly activated) PATH followed by the tool requirements' bin dirs.
package loader

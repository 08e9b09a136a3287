// Package toolchain translates the package manager's host settings into waf
// environment values: target CPU and OS, compiler preference, runtime and
// ABI flags, language standard and build type.
//
// waf detects compilers itself; this package only steers that detection
// (COMPILER_CXX_PREFERENCE, MSVC_VERSIONS) and appends flags. Settings that
// are absent leave the environment untouched.
package toolchain

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/wafconan/pkg/configset"
	"github.com/matzehuels/wafconan/pkg/errors"
)

// Environment keys written by [Apply].
const (
	DestCPU               = "DEST_CPU"
	DestOS                = "DEST_OS"
	DestOSVersion         = "DEST_OS_VERSION"
	WindowsSubsystem      = "WINDOWS_SUBSYSTEM"
	AndroidMinSDK         = "ANDROID_MINSDKVERSION"
	IOSSDKName            = "IOS_SDK_NAME"
	IOSSDKMinVer          = "IOS_SDK_MINVER"
	CompilerCXXPreference = "COMPILER_CXX_PREFERENCE"
	CompilerCPreference   = "COMPILER_C_PREFERENCE"
	MSVCVersions          = "MSVC_VERSIONS"
	MSVCTargets           = "MSVC_TARGETS"
)

// Options configures [Apply].
type Options struct {
	Logger *log.Logger
}

// Apply writes the waf values derived from settings into env.
func Apply(env *configset.ConfigSet, settings map[string]string, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	applyArch(env, settings)
	applyOS(env, settings)
	applyCompiler(env, settings, logger)
	if err := applyCPPStd(env, settings); err != nil {
		return err
	}
	applyBuildType(env, settings)
	return nil
}

// ApplyConfig appends the global flags of a CONAN_CONFIG table to env.
func ApplyConfig(env *configset.ConfigSet, conf map[string][]string) {
	for _, k := range []string{"DEFINES", "CFLAGS", "CXXFLAGS", "LINKFLAGS"} {
		env.AppendValue(k, conf[k]...)
	}
}

// archMap groups settings architectures under waf's DEST_CPU names.
var archMap = map[string][]string{
	"x86_64":  {"x86_64"},
	"x86":     {"x86"},
	"mips":    {"mips", "mips64"},
	"sparc":   {"sparc", "sparcv9"},
	"arm":     {"armv4", "armv4i", "armv5el", "armv5hf", "armv6", "armv7", "armv7hf", "armv7s", "armv7k", "armv8", "armv8_32", "armv8.3"},
	"powerpc": {"ppc32be", "ppc32", "ppc64le", "ppc64"},
	"sh":      {"sh4le"},
	"s390":    {"s390"},
	"s390x":   {"s390x"},
	"xtensa":  {"xtensalx6", "xtensalx106", "xtensalx7"},
	"e2k":     {"e2k-v2", "e2k-v3", "e2k-v4", "e2k-v5", "e2k-v6", "e2k-v7"},
}

// DestCPUFor returns waf's DEST_CPU for a settings arch. Unknown arches map
// to themselves.
func DestCPUFor(arch string) string {
	for waf, arches := range archMap {
		if slices.Contains(arches, arch) {
			return waf
		}
	}
	return arch
}

func applyArch(env *configset.ConfigSet, s map[string]string) {
	if arch, ok := s["arch"]; ok {
		env.Set(DestCPU, DestCPUFor(arch))
	}
}

// DestOSFor returns waf's DEST_OS for a settings os.
func DestOSFor(os string) string {
	switch os {
	case "Macos":
		return "darwin"
	case "Windows":
		return "win32"
	}
	return strings.ToLower(os)
}

func applyOS(env *configset.ConfigSet, s map[string]string) {
	name, ok := s["os"]
	if !ok {
		return
	}
	dest := DestOSFor(name)
	env.Set(DestOS, dest)

	if v := s["os.version"]; v != "" {
		env.Set(DestOSVersion, v)
	}
	if v := s["os.subsystem"]; dest == "win32" && v != "" {
		env.Set(WindowsSubsystem, v)
	}
	if dest == "android" {
		env.Set(AndroidMinSDK, s["os.api_level"])
	}
	switch dest {
	case "ios", "tvos", "watchos":
		env.Set(IOSSDKName, s["os.sdk"])
		env.Set(IOSSDKMinVer, s["os.sdk_version"])
	}
}

// compilerTools maps settings compilers to waf tool names (C++, C).
var compilerTools = map[string][2]string{
	"clang":       {"clangxx", "clang"},
	"apple-clang": {"clangxx", "clang"},
	"gcc":         {"gxx", "gcc"},
	"msvc":        {"msvc", "msvc"},
	"sun-cc":      {"suncxx", "suncc"},
	"intel-cc":    {"icpc", "icc"},
	"qcc":         {"", ""},
	"mcst-lcc":    {"", ""},
}

func applyCompiler(env *configset.ConfigSet, s map[string]string, logger *log.Logger) {
	compiler, ok := s["compiler"]
	if !ok {
		return
	}

	if s["compiler.threads"] != "" || s["compiler.exception"] != "" {
		logger.Warn("MinGW threads/exception settings are not translated", "compiler", compiler)
	}

	switch s["compiler.libcxx"] {
	case "libstdc++":
		env.AppendValue("CXXFLAGS", "-D_GLIBCXX_USE_CXX11_ABI=0")
	case "libstdc++11":
		env.AppendValue("CXXFLAGS", "-D_GLIBCXX_USE_CXX11_ABI=1")
	}

	if runtime, typ := s["compiler.runtime"], s["compiler.runtime_type"]; runtime != "" && typ != "" {
		flag := "/MT"
		if runtime == "dynamic" {
			flag = "/MD"
		}
		if typ == "Debug" {
			flag += "d"
		}
		env.AppendValue("CXXFLAGS", flag)
	}

	tools, known := compilerTools[compiler]
	if !known {
		logger.Debug("no waf tool for compiler", "compiler", compiler)
	}
	if tools[0] != "" {
		env.Set(CompilerCXXPreference, []string{tools[0]})
	}
	if tools[1] != "" {
		env.Set(CompilerCPreference, []string{tools[1]})
	}

	if compiler == "msvc" {
		if v := s["compiler.version"]; len(v) >= 2 {
			env.Set(MSVCVersions, []string{"msvc " + v[:1] + "." + v[len(v)-1:]})
		}
		if arch := s["arch"]; arch != "" {
			env.Set(MSVCTargets, []string{arch})
		}
	}
}

var gccStd = map[string]string{
	"98": "c++98", "gnu98": "gnu++98",
	"11": "c++11", "gnu11": "gnu++11",
	"14": "c++14", "gnu14": "gnu++14",
	"17": "c++17", "gnu17": "gnu++17",
	"20": "c++20", "gnu20": "gnu++20",
	"23": "c++23", "gnu23": "gnu++23",
}

var msvcStd = map[string]string{
	"14": "/std:c++14",
	"17": "/std:c++17",
	"20": "/std:c++20",
	"23": "/std:c++latest",
}

// CPPStdFlag returns the language standard flag for compiler.
func CPPStdFlag(compiler, cppstd string) (string, error) {
	if compiler == "msvc" {
		if f, ok := msvcStd[cppstd]; ok {
			return f, nil
		}
		return "", errors.New(errors.ErrCodeUnsupported, "cppstd %q is not supported by msvc", cppstd)
	}
	if std, ok := gccStd[cppstd]; ok {
		return "-std=" + std, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unknown cppstd %q", cppstd)
}

func applyCPPStd(env *configset.ConfigSet, s map[string]string) error {
	cppstd, ok := s["compiler.cppstd"]
	if !ok {
		return nil
	}
	flag, err := CPPStdFlag(s["compiler"], cppstd)
	if err != nil {
		return err
	}
	env.AppendValue("CXXFLAGS", flag)
	return nil
}

// BuildTypeFlags returns the compile and link flags for a build type.
// MSVC-style flags are used for msvc and for clang targeting Windows.
func BuildTypeFlags(buildType, compiler, os string) (cxxflags, linkflags []string) {
	if compiler == "msvc" || (strings.Contains(os, "Windows") && compiler == "clang") {
		switch buildType {
		case "Debug":
			return []string{"/Zi", "/Od"}, []string{"/debug"}
		case "Release":
			return []string{"/O2", "/DNDEBUG"}, []string{"/incremental:no"}
		case "RelWithDebInfo":
			return []string{"/Zi", "/O2", "/DNDEBUG"}, []string{"/debug"}
		case "MinSizeRel":
			return []string{"/O1", "/DNDEBUG"}, []string{"/incremental:no"}
		}
		return nil, nil
	}
	switch buildType {
	case "Debug":
		return []string{"-g", "-O0"}, nil
	case "Release":
		return []string{"-O3", "-DNDEBUG"}, nil
	case "RelWithDebInfo":
		return []string{"-g", "-O2", "-DNDEBUG"}, nil
	case "MinSizeRel":
		return []string{"-Os", "-DNDEBUG"}, nil
	}
	return nil, nil
}

func applyBuildType(env *configset.ConfigSet, s map[string]string) {
	bt, ok := s["build_type"]
	if !ok {
		return
	}
	cxx, link := BuildTypeFlags(bt, s["compiler"], s["os"])
	env.AppendValue("CXXFLAGS", cxx...)
	env.AppendValue("LINKFLAGS", link...)
}

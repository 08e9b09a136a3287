package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package reference name from the resolved graph.
// It rejects names that could be used for path traversal or injection into
// the generated artifact.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// variableNameRegex matches portable environment variable names.
var variableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateVariableName validates an environment variable name used by an
// environment profile operation. Names containing '=' or NUL cannot be
// represented in a process environment on any platform.
func ValidateVariableName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidOperation, "variable name cannot be empty")
	}
	if !variableNameRegex.MatchString(name) {
		return New(ErrCodeInvalidOperation, "invalid variable name: %q", name)
	}
	return nil
}

// configSetKeyRegex matches keys accepted by waf's ConfigSet loader.
var configSetKeyRegex = regexp.MustCompile(`^\w+$`)

// ValidateConfigSetKey validates a key written to a ConfigSet artifact.
func ValidateConfigSetKey(key string) error {
	if !configSetKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidConfigSet, "invalid ConfigSet key: %q", key)
	}
	return nil
}

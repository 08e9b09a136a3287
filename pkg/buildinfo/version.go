// Package buildinfo carries version information stamped at link time:
//
//	go build -ldflags "-X github.com/matzehuels/wafconan/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/wafconan/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/wafconan/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	// Version is the release tag, "dev" for local builds.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Generator identifies the generator build in cache keys. Artifacts cached by
// one build are never served to another.
func Generator() string {
	return "wafconan/" + Version + "+" + Commit
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

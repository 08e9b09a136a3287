// Package program finds executables the way waf's find_program does, on a
// search path extended with the bin dirs of tool requirements.
package program

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/matzehuels/wafconan/pkg/envprofile"
	"github.com/matzehuels/wafconan/pkg/errors"
)

// defaultPathExt is used on Windows when PATHEXT is unset.
const defaultPathExt = ".COM;.EXE;.BAT;.CMD"

// SearchPath returns the PATH entries visible through lookup followed by
// extra, with empty and repeated entries removed.
func SearchPath(lookup envprofile.LookupFunc, extra ...string) []string {
	var dirs []string
	if lookup != nil {
		if path, ok := lookup("PATH"); ok {
			dirs = filepath.SplitList(path)
		}
	}
	dirs = append(dirs, extra...)

	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}

// Find returns the first executable called name in dirs. A name containing
// a path separator is checked as given. On Windows each PATHEXT extension is
// tried; elsewhere the file must have an execute bit.
//
// Find returns a PROGRAM_NOT_FOUND error listing the searched directories.
func Find(name string, dirs []string) (string, error) {
	candidates := candidates(name)

	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		for _, c := range candidates {
			if isExecutable(c) {
				return c, nil
			}
		}
		return "", errors.New(errors.ErrCodeProgramNotFound, "program %s not found", name)
	}

	for _, d := range dirs {
		for _, c := range candidates {
			p := filepath.Join(d, c)
			if isExecutable(p) {
				return p, nil
			}
		}
	}
	return "", errors.New(errors.ErrCodeProgramNotFound, "program %s not found in %s", name, strings.Join(dirs, string(os.PathListSeparator)))
}

func candidates(name string) []string {
	if runtime.GOOS != "windows" {
		return []string{name}
	}
	if filepath.Ext(name) != "" {
		return []string{name}
	}
	exts := os.Getenv("PATHEXT")
	if exts == "" {
		exts = defaultPathExt
	}
	out := []string{name}
	for _, e := range strings.Split(exts, string(os.PathListSeparator)) {
		if e != "" {
			out = append(out, name+strings.ToLower(e))
		}
	}
	return out
}

func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode()&0o111 != 0
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/wafconan/pkg/activate"
	"github.com/matzehuels/wafconan/pkg/loader"
)

// ExitError carries a child process's non-zero exit status so main can exit
// with the same code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// processEnv returns an in-memory copy of the process environment. Commands
// activate profiles into the copy and hand it to the child process, so the
// wafconan process itself is never modified.
func processEnv() activate.MapEnviron {
	m := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		m[k] = v
	}
	return activate.NewMapEnviron(m)
}

// splitDashArgs splits "[artifact] -- argv..." into the artifact path (the
// configured default when omitted) and the command line.
func splitDashArgs(cmd *cobra.Command, args []string, def string) (string, []string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return "", nil, fmt.Errorf("missing -- before the command line")
	}
	if dash > 1 {
		return "", nil, fmt.Errorf("expected at most one artifact before --, got %d", dash)
	}
	path := def
	if dash == 1 {
		path = args[0]
	}
	return path, args[dash:], nil
}

// resolveProgram returns name unchanged when it is a path, otherwise looks it
// up on the context's search path.
func resolveProgram(lc *loader.Context, name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) || strings.ContainsRune(name, '/') {
		return name, nil
	}
	return lc.FindProgram(name)
}

// execute runs path with args and env, wired to the terminal.
func execute(ctx context.Context, path string, args, env []string) error {
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Code: ee.ExitCode()}
	}
	return err
}

// Package dumpbin invokes the external binary-introspection tool and
// captures its textual output for pattern matching.
package dumpbin

import (
	"os/exec"
	"strings"

	"github.com/portlint/portlint/internal/domain"
)

// Runner implements domain.ToolRunner by running the configured executable
// with a mode switch (/exports, /headers, /directives, /dependents) and one
// binary path. Output is memoized per (mode, binary) within a run; the tool
// is assumed deterministic over an unchanged file, so memoization cannot
// change outcomes.
type Runner struct {
	exe  string
	memo map[string]string
}

// New creates a Runner. An empty exe means the tool is not configured and
// the checks that need it are skipped.
func New(exe string) *Runner {
	return &Runner{exe: exe, memo: make(map[string]string)}
}

func (r *Runner) Available() bool { return r.exe != "" }

// Run executes the tool synchronously. A non-zero exit is a toolchain fault:
// it aborts validation rather than counting as a lint failure.
func (r *Runner) Run(mode domain.ToolMode, binaryPath string) (string, error) {
	key := string(mode) + "\x00" + binaryPath
	if out, ok := r.memo[key]; ok {
		return out, nil
	}

	cmd := exec.Command(r.exe, "/"+string(mode), binaryPath)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", &domain.ToolchainError{
			Command: strings.Join(cmd.Args, " "),
			Output:  string(out),
			Err:     err,
		}
	}

	r.memo[key] = string(out)
	return string(out), nil
}

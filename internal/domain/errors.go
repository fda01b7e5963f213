package domain

import "fmt"

// ToolchainError reports that the external introspection tool failed to run
// or exited non-zero. It indicates a broken toolchain, not a malformed
// package, and aborts the validation run.
type ToolchainError struct {
	Command string
	Output  string
	Err     error
}

func (e *ToolchainError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("running command %q failed with message:\n%s", e.Command, e.Output)
	}
	return fmt.Sprintf("running command %q failed: %v", e.Command, e.Err)
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// Package lint holds the post-build validation checks and the orchestrator
// that runs them. Every check is a pure function over one immutable Context;
// a failing check contributes diagnostics and never stops the run.
package lint

import (
	"github.com/portlint/portlint/internal/domain"
)

// Context is the shared immutable input of one validation run.
type Context struct {
	Spec     domain.PackageSpec
	Expected domain.ExpectedConfiguration
	Policies domain.PolicySet

	// Package is the staged output directory of the built package.
	Package *domain.TreeSnapshot
	// Source is a shallow snapshot of the package's source build tree, used
	// only to suggest copyright file candidates. May be empty.
	Source *domain.TreeSnapshot

	// Tool runs the external binary-introspection tool. Checks that need it
	// pass themselves by when it is unavailable.
	Tool domain.ToolRunner
}

func (c *Context) toolAvailable() bool {
	return c.Tool != nil && c.Tool.Available()
}

// Check is one atomic validation unit in the orchestrator's ordered
// registry. Run returns an error only for toolchain/configuration faults;
// package problems are reported through the CheckResult.
type Check struct {
	Name string
	Run  func(*Context) (domain.CheckResult, error)
}

func pathLines(entries []domain.TreeEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = "    " + e.RelPath
	}
	return out
}

// Package gitinfo resolves version-control metadata for report traceability.
package gitinfo

import (
	"github.com/go-git/go-git/v5"
)

// Adapter implements domain.GitInfo using go-git.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

// HeadCommit returns the HEAD commit hash of the repository containing path.
// ok is false when path is not inside a git repository or HEAD cannot be
// resolved; traceability is best-effort and never fails a run.
func (a *Adapter) HeadCommit(path string) (string, bool) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	head, err := repo.Head()
	if err != nil {
		return "", false
	}
	return head.Hash().String(), true
}

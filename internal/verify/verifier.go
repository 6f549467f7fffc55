// Package verify checks that a repository's declared dependencies can be
// satisfied in the current environment.
//
// Verifiers never return errors: every failure, expected or not, is folded
// into a Result so the caller can keep going.
package verify

import (
	"context"

	"repoeval/internal/workspace"
)

type Verifier interface {
	Verify(ctx context.Context, repo workspace.Repository) Result
}

// Set maps repository kinds to the verifier responsible for them.
type Set struct {
	Python Verifier
	Node   Verifier
}

// Dispatch runs the verifier for repo.Kind. Unknown kinds, and kinds without a
// configured verifier, produce an UnknownResult without running anything.
func (s Set) Dispatch(ctx context.Context, repo workspace.Repository) Result {
	var v Verifier
	switch repo.Kind {
	case workspace.KindPython:
		v = s.Python
	case workspace.KindNode:
		v = s.Node
	}
	if v == nil {
		return UnknownResult(repo)
	}
	return v.Verify(ctx, repo)
}

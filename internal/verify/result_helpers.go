package verify

import (
	"fmt"

	"repoeval/internal/workspace"
)

func NewResult(repo workspace.Repository, success bool, reason Reason, message string) Result {
	return Result{
		Repo:    repo.Name,
		Kind:    repo.Kind,
		Success: success,
		Reason:  reason,
		Message: message,
	}
}

func PassResult(repo workspace.Repository, message string) Result {
	return NewResult(repo, true, ReasonNone, message)
}

func FailResult(repo workspace.Repository, reason Reason, message string) Result {
	return NewResult(repo, false, reason, message)
}

// UnknownResult is recorded for repositories no verifier handles.
func UnknownResult(repo workspace.Repository) Result {
	return FailResult(repo, ReasonUnknownRepoType, fmt.Sprintf("Unknown repository type for %s", repo.Name))
}

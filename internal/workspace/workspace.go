package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Repository is a single entry of the workspace, resolved against its root.
type Repository struct {
	Name string
	Path string
	Kind Kind
}

// Spec is the configured form of a repository before it is joined with the
// workspace root.
type Spec struct {
	Name string
	Kind Kind
}

// Resolve builds the ordered repository list for a workspace root.
// Specs without a kind get one inferred from their name.
func Resolve(root string, specs []Spec) []Repository {
	out := make([]Repository, 0, len(specs))
	for _, s := range specs {
		kind := s.Kind
		if kind == "" {
			kind = KindFromName(s.Name)
		}
		out = append(out, Repository{
			Name: s.Name,
			Path: filepath.Join(root, s.Name),
			Kind: kind,
		})
	}
	return out
}

// CheckReason classifies an existence check outcome.
type CheckReason string

const (
	CheckOK            CheckReason = ""
	CheckMissingPath   CheckReason = "missing_path"
	CheckNotADirectory CheckReason = "not_a_directory"
)

// Check is the outcome of probing a repository path.
type Check struct {
	OK      bool
	Reason  CheckReason
	Message string
}

// CheckExists reports whether path exists and is a directory.
func CheckExists(path string) Check {
	fi, err := os.Stat(path)
	if err != nil {
		// Permission and other stat failures are reported the same way: the
		// directory cannot be used.
		return Check{Reason: CheckMissingPath, Message: fmt.Sprintf("%s does not exist", path)}
	}
	if !fi.IsDir() {
		return Check{Reason: CheckNotADirectory, Message: fmt.Sprintf("%s is not a directory", path)}
	}
	return Check{OK: true, Message: fmt.Sprintf("%s exists and is a directory", path)}
}

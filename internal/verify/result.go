package verify

import "repoeval/internal/workspace"

// Reason classifies why a verification ended the way it did.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonMissingManifest      Reason = "missing_manifest"
	ReasonImportFailure        Reason = "import_failure"
	ReasonInstallerNonZeroExit Reason = "installer_nonzero_exit"
	ReasonUnexpectedError      Reason = "unexpected_error"
	ReasonUnknownRepoType      Reason = "unknown_repository_type"
)

type Result struct {
	Repo    string         `json:"repo"`
	Kind    workspace.Kind `json:"kind"`
	Success bool           `json:"success"`
	Reason  Reason         `json:"reason,omitempty"`
	Message string         `json:"message,omitempty"`
	// Missing lists every identifier that failed to import, in file order.
	Missing []string `json:"missing,omitempty"`
	// Stderr is the installer's captured error stream on failure.
	Stderr string `json:"stderr,omitempty"`
}

package output

import "repoeval/internal/verify"

// Lifecycle event types.
const (
	EventRunStarted  = "run.started"
	EventRepoStarted = "repo.started"
	EventRepoChecked = "repo.checked"
	EventRepoSkipped = "repo.skipped"
	EventRepoResult  = "repo.result"
	EventRunFinished = "run.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// Verification outcomes are written to sinks as verify.Result values; NDJSON
// sinks wrap them in a "repo.result" Event. JSON mode is an aggregate of
// verify.Result values only.
type Event struct {
	Type    string         `json:"type"`
	RunID   string         `json:"run_id,omitempty"`
	Repo    string         `json:"repo,omitempty"`
	Path    string         `json:"path,omitempty"`
	Message string         `json:"message,omitempty"`
	Result  *verify.Result `json:"result,omitempty"`

	Repos    int `json:"repos,omitempty"`
	Passed   int `json:"passed,omitempty"`
	Failed   int `json:"failed,omitempty"`
	Skipped  int `json:"skipped,omitempty"`
	ExitCode int `json:"exit_code,omitempty"`
}

func eventFromResult(r verify.Result) Event {
	return Event{Type: EventRepoResult, Repo: r.Repo, Result: &r}
}

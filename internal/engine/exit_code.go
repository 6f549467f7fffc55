package engine

// Exit code contract:
// 0 = every evaluated repository passed (or none was evaluated)
// 1 = at least one repository failed verification
// 2 = partial failure (a verification could not run to completion, or the
//     run was interrupted)
// 3 = fatal error (evaluation did not run)
const (
	ExitClean    = 0
	ExitFailures = 1
	ExitPartial  = 2
	ExitFatal    = 3
)

func exitCodeForRun(fatal, partial, failures bool) int {
	if fatal {
		return ExitFatal
	}
	if partial {
		return ExitPartial
	}
	if failures {
		return ExitFailures
	}
	return ExitClean
}

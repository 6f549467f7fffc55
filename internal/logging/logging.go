package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// New returns the diagnostics logger. Diagnostics go to stderr so they never
// mix with the evaluation output on stdout.
func New(w io.Writer, verbose bool) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "repoeval",
		Level:  level,
		Output: w,
	})
}

// Package execx runs external tools and captures their output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Command describes a single process invocation.
type Command struct {
	// Dir is the working directory. Empty means the current directory.
	Dir  string
	Name string
	Args []string
	// Env holds extra KEY=VALUE entries appended to the parent environment.
	// Later entries replace earlier ones with the same key.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Outcome is what a finished process left behind.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the process exited with status 0.
func (o Outcome) Success() bool {
	return o.ExitCode == 0
}

// Runner executes commands.
//
// A process that starts and exits non-zero is not an error: the exit code is
// returned in the Outcome. Run returns an error only when the process could not
// be started or the context ended first.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Outcome, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	Logger hclog.Logger
}

func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) (Outcome, error) {
	if c.Name == "" {
		return Outcome{}, errors.New("command name must not be empty")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = mergeEnv(os.Environ(), c.Env)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	out := Outcome{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.Logger.Debug("command failed to start", "command", c.String(), "dir", c.Dir, "error", err)
			return out, fmt.Errorf("run %s: %w", c.Name, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	r.Logger.Debug("command finished",
		"command", c.String(),
		"dir", c.Dir,
		"exit_code", out.ExitCode,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return out, nil
}

// mergeEnv appends extra onto base, dropping base entries whose key is
// redefined.
func mergeEnv(base, extra []string) []string {
	override := make(map[string]struct{}, len(extra))
	for _, kv := range extra {
		k, _, _ := strings.Cut(kv, "=")
		override[k] = struct{}{}
	}
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, ok := override[k]; ok {
			continue
		}
		out = append(out, kv)
	}
	return append(out, extra...)
}

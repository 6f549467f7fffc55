package engine

import (
	"context"
	"fmt"
	"io"
	"os"

	"repoeval/internal/config"
	"repoeval/internal/execx"
	"repoeval/internal/output"
	"repoeval/internal/verify"
	"repoeval/internal/workspace"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

// Recorder receives lifecycle events and verification results.
// *output.Manager satisfies it.
type Recorder interface {
	Write(v any) error
}

// Summary is the outcome of one evaluation pass.
type Summary struct {
	// Results holds one entry per repository that passed the existence check,
	// in processing order.
	Results []verify.Result
	// Skipped names repositories that were missing or not directories.
	Skipped []string
	// Interrupted is set when ctx ended before every repository was processed.
	Interrupted bool
}

func (s Summary) Counts() (passed, failed int) {
	for _, r := range s.Results {
		if r.Success {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// Partial reports whether the run was interrupted or any verification broke
// instead of reaching a verdict.
func (s Summary) Partial() bool {
	if s.Interrupted {
		return true
	}
	for _, r := range s.Results {
		if r.Reason == verify.ReasonUnexpectedError {
			return true
		}
	}
	return false
}

type Engine struct {
	cfg       *config.Config
	logger    hclog.Logger
	verifiers verify.Set

	// stdout receives console and emit output. Defaults to os.Stdout.
	stdout   io.Writer
	colorize bool
	// newRunID is a test seam for deterministic run IDs.
	newRunID func() string
}

// NewEngine wires the default verifiers for cfg. cfg must already be validated.
func NewEngine(cfg *config.Config, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	runner := execx.NewExecRunner(logger.Named("exec"))
	py := verify.NewPythonVerifier(runner, cfg.Toolchain.Python, logger.Named("python"))
	py.Env = cfg.Toolchain.Env
	node := verify.NewNodeVerifier(runner, cfg.InstallerArgs(), logger.Named("node"))
	node.Env = cfg.Toolchain.Env
	return &Engine{
		cfg:       cfg,
		logger:    logger,
		verifiers: verify.Set{Python: py, Node: node},
		stdout:   os.Stdout,
		colorize: !color.NoColor,
		newRunID: uuid.NewString,
	}
}

// SetOutput redirects console and emit output.
func (e *Engine) SetOutput(w io.Writer) {
	if w != nil {
		e.stdout = w
	}
}

// Evaluate processes repos strictly in order and records one result per
// repository that exists. A failing repository does not stop the loop; a
// cancelled ctx does, and the remaining repositories are not recorded.
func (e *Engine) Evaluate(ctx context.Context, repos []workspace.Repository, rec Recorder) Summary {
	var sum Summary
	for i, repo := range repos {
		if err := ctx.Err(); err != nil {
			e.logger.Warn("evaluation interrupted", "remaining", len(repos)-i, "error", err)
			sum.Interrupted = true
			break
		}
		_ = rec.Write(output.Event{Type: output.EventRepoStarted, Repo: repo.Name, Path: repo.Path})

		check := workspace.CheckExists(repo.Path)
		_ = rec.Write(output.Event{Type: output.EventRepoChecked, Repo: repo.Name, Path: repo.Path, Message: check.Message})
		if !check.OK {
			e.logger.Debug("skipping repository", "repo", repo.Name, "reason", check.Reason)
			_ = rec.Write(output.Event{Type: output.EventRepoSkipped, Repo: repo.Name, Path: repo.Path, Message: check.Message})
			sum.Skipped = append(sum.Skipped, repo.Name)
			continue
		}

		res := e.verifiers.Dispatch(ctx, repo)
		e.logger.Debug("repository verified", "repo", repo.Name, "kind", repo.Kind, "success", res.Success, "reason", res.Reason)
		sum.Results = append(sum.Results, res)
		_ = rec.Write(res)
	}
	return sum
}

func (e *Engine) setupOutputManager() (*output.Manager, error) {
	cfg := e.cfg
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(e.stdout, cfg.Output.ConsoleFormat, e.colorize)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(e.stdout, emit)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// Run evaluates every configured repository, prints the summary and returns
// the process exit code.
func (e *Engine) Run(ctx context.Context) int {
	outMgr, err := e.setupOutputManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output sinks: %v\n", err)
		return exitCodeForRun(true, false, false)
	}
	defer func() {
		if err := outMgr.Close(); err != nil {
			e.logger.Error("closing output sinks", "error", err)
		}
	}()

	repos := e.cfg.Repositories()
	runID := e.newRunID()
	e.logger.Debug("evaluation started", "run_id", runID, "workspace", e.cfg.Workspace.Root, "repos", len(repos))
	_ = outMgr.Write(output.Event{Type: output.EventRunStarted, RunID: runID, Path: e.cfg.Workspace.Root, Repos: len(repos)})

	sum := e.Evaluate(ctx, repos, outMgr)

	passed, failed := sum.Counts()
	code := exitCodeForRun(false, sum.Partial(), failed > 0)
	_ = outMgr.Write(output.Event{
		Type:     output.EventRunFinished,
		RunID:    runID,
		Repos:    len(repos),
		Passed:   passed,
		Failed:   failed,
		Skipped:  len(sum.Skipped),
		ExitCode: code,
	})
	return code
}

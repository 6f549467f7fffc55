package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"repoeval/internal/config"
	"repoeval/internal/execx"
	"repoeval/internal/output"
	"repoeval/internal/verify"
	"repoeval/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner answers every command with the same outcome and records calls.
type scriptedRunner struct {
	calls   []execx.Command
	outcome execx.Outcome
}

func (r *scriptedRunner) Run(ctx context.Context, cmd execx.Command) (execx.Outcome, error) {
	r.calls = append(r.calls, cmd)
	return r.outcome, nil
}

type countingVerifier struct {
	calls  int
	result func(repo workspace.Repository) verify.Result
}

func (v *countingVerifier) Verify(ctx context.Context, repo workspace.Repository) verify.Result {
	v.calls++
	return v.result(repo)
}

type eventLog struct {
	items []any
}

func (l *eventLog) Write(v any) error {
	l.items = append(l.items, v)
	return nil
}

func (l *eventLog) types() []string {
	var out []string
	for _, it := range l.items {
		switch t := it.(type) {
		case output.Event:
			out = append(out, t.Type)
		case verify.Result:
			out = append(out, "result:"+t.Repo)
		}
	}
	return out
}

func mkdirs(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		if body != "" {
			require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		}
	}
}

// newTestEngine builds an engine over a fresh workspace with the node
// installer answered by runner.
func newTestEngine(t *testing.T, repos []string, runner execx.Runner) (*Engine, *bytes.Buffer) {
	t.Helper()
	cfg := config.New()
	cfg.Workspace.Root = t.TempDir()
	cfg.Workspace.RepoArgs = repos
	require.NoError(t, cfg.Validate())

	var stdout bytes.Buffer
	e := NewEngine(cfg, nil)
	e.verifiers.Node = verify.NewNodeVerifier(runner, cfg.InstallerArgs(), nil)
	e.stdout = &stdout
	e.colorize = false
	e.newRunID = func() string { return "run-test" }
	return e, &stdout
}

func TestEvaluate_Scenario(t *testing.T) {
	runner := &scriptedRunner{}
	e, _ := newTestEngine(t, []string{"a_py", "b_js", "c_other"}, runner)
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{
		"b_js/package.json": "{}",
		"c_other/README":    "x",
	})

	var log eventLog
	sum := e.Evaluate(context.Background(), e.cfg.Repositories(), &log)

	require.Len(t, sum.Results, 2)
	assert.Equal(t, "b_js", sum.Results[0].Repo)
	assert.True(t, sum.Results[0].Success)
	assert.Equal(t, "c_other", sum.Results[1].Repo)
	assert.False(t, sum.Results[1].Success)
	assert.Equal(t, verify.ReasonUnknownRepoType, sum.Results[1].Reason)
	assert.Equal(t, []string{"a_py"}, sum.Skipped)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, filepath.Join(e.cfg.Workspace.Root, "b_js"), runner.calls[0].Dir)

	assert.Equal(t, []string{
		output.EventRepoStarted, output.EventRepoChecked, output.EventRepoSkipped,
		output.EventRepoStarted, output.EventRepoChecked, "result:b_js",
		output.EventRepoStarted, output.EventRepoChecked, "result:c_other",
	}, log.types())
}

func TestEvaluate_NotADirectoryIsOmitted(t *testing.T) {
	py := &countingVerifier{result: func(r workspace.Repository) verify.Result { return verify.PassResult(r, "ok") }}
	e, _ := newTestEngine(t, []string{"a_py"}, &scriptedRunner{})
	e.verifiers.Python = py
	require.NoError(t, os.WriteFile(filepath.Join(e.cfg.Workspace.Root, "a_py"), []byte("file"), 0o644))

	sum := e.Evaluate(context.Background(), e.cfg.Repositories(), &eventLog{})
	assert.Empty(t, sum.Results)
	assert.Equal(t, []string{"a_py"}, sum.Skipped)
	assert.Zero(t, py.calls)
}

func TestEvaluate_UnknownKindRunsNoVerifier(t *testing.T) {
	py := &countingVerifier{result: func(r workspace.Repository) verify.Result { return verify.PassResult(r, "ok") }}
	runner := &scriptedRunner{}
	e, _ := newTestEngine(t, []string{"hallucinate_app"}, runner)
	e.verifiers.Python = py
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"hallucinate_app/requirements.txt": "os", "hallucinate_app/package.json": "{}"})

	sum := e.Evaluate(context.Background(), e.cfg.Repositories(), &eventLog{})
	require.Len(t, sum.Results, 1)
	assert.Equal(t, "Unknown repository type for hallucinate_app", sum.Results[0].Message)
	assert.Zero(t, py.calls)
	assert.Empty(t, runner.calls)
}

func TestEvaluate_ExplicitKindOverridesSuffix(t *testing.T) {
	py := &countingVerifier{result: func(r workspace.Repository) verify.Result { return verify.PassResult(r, "ok") }}
	e, _ := newTestEngine(t, []string{"tooling:python"}, &scriptedRunner{})
	e.verifiers.Python = py
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"tooling/x": ""})

	sum := e.Evaluate(context.Background(), e.cfg.Repositories(), &eventLog{})
	require.Len(t, sum.Results, 1)
	assert.True(t, sum.Results[0].Success)
	assert.Equal(t, 1, py.calls)
}

func TestEvaluate_Idempotent(t *testing.T) {
	runner := &scriptedRunner{outcome: execx.Outcome{ExitCode: 1, Stderr: "npm ERR!"}}
	e, _ := newTestEngine(t, []string{"a_py", "b_js", "c_other", "d_cjs"}, runner)
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{
		"b_js/package.json": "{}",
		"c_other/x":         "",
		"d_cjs/x":           "",
	})

	first := e.Evaluate(context.Background(), e.cfg.Repositories(), &eventLog{})
	second := e.Evaluate(context.Background(), e.cfg.Repositories(), &eventLog{})
	assert.Equal(t, first, second)
	require.Len(t, first.Results, 3)
	assert.Equal(t, verify.ReasonInstallerNonZeroExit, first.Results[0].Reason)
	assert.Equal(t, verify.ReasonMissingManifest, first.Results[2].Reason)
}

func TestEvaluate_StopsWhenCancelled(t *testing.T) {
	py := &countingVerifier{}
	e, _ := newTestEngine(t, []string{"a_py", "b_py"}, &scriptedRunner{})
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"a_py/x": "", "b_py/x": ""})

	ctx, cancel := context.WithCancel(context.Background())
	py.result = func(r workspace.Repository) verify.Result {
		cancel()
		return verify.PassResult(r, "ok")
	}
	e.verifiers.Python = py

	var log eventLog
	sum := e.Evaluate(ctx, e.cfg.Repositories(), &log)
	assert.Equal(t, 1, py.calls)
	require.Len(t, sum.Results, 1)
	assert.Equal(t, "a_py", sum.Results[0].Repo)
	assert.True(t, sum.Interrupted)
	assert.True(t, sum.Partial())
	assert.Equal(t, []string{output.EventRepoStarted, output.EventRepoChecked, "result:a_py"}, log.types())
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	py := &countingVerifier{result: func(r workspace.Repository) verify.Result { return verify.PassResult(r, "ok") }}
	e, _ := newTestEngine(t, []string{"a_py"}, &scriptedRunner{})
	e.verifiers.Python = py
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"a_py/x": ""})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, ExitPartial, e.Run(ctx))
	assert.Zero(t, py.calls)
}

func TestRun_TextSummaryAndExitCode(t *testing.T) {
	e, stdout := newTestEngine(t, []string{"a_py", "b_js", "c_other"}, &scriptedRunner{})
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{
		"b_js/package.json": "{}",
		"c_other/x":         "",
	})

	code := e.Run(context.Background())
	assert.Equal(t, ExitFailures, code)

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "Starting repository evaluation...\n"))
	assert.Contains(t, out, "Unknown repository type for c_other\n")
	_, summary, ok := strings.Cut(out, "Evaluation Summary:\n")
	require.True(t, ok)
	lines := strings.Split(strings.TrimSpace(summary), "\n")
	assert.Equal(t, []string{strings.Repeat("-", 50), "✓ b_js", "✗ c_other"}, lines)
}

func TestRun_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		repos []string
		files map[string]string
		want  int
	}{
		{name: "nothing exists", repos: []string{"a_py"}, want: ExitClean},
		{name: "all pass", repos: []string{"b_js"}, files: map[string]string{"b_js/package.json": "{}"}, want: ExitClean},
		{name: "failure", repos: []string{"b_js"}, files: map[string]string{"b_js/x": ""}, want: ExitFailures},
		{name: "partial", repos: []string{"a_py"}, files: map[string]string{"a_py/requirements.txt/x": ""}, want: ExitPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, tt.repos, &scriptedRunner{})
			mkdirs(t, e.cfg.Workspace.Root, tt.files)
			assert.Equal(t, tt.want, e.Run(context.Background()))
		})
	}
}

func TestRun_NoConsoleWithFileAndReport(t *testing.T) {
	e, stdout := newTestEngine(t, []string{"a_py", "b_js"}, &scriptedRunner{})
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"b_js/package.json": "{}"})

	outDir := t.TempDir()
	e.cfg.Output.NoConsole = true
	e.cfg.Output.Out = filepath.Join(outDir, "results.ndjson")
	e.cfg.Output.OutFormat = "ndjson"
	e.cfg.Output.Report = filepath.Join(outDir, "report.md")

	assert.Equal(t, ExitClean, e.Run(context.Background()))
	assert.Empty(t, stdout.String())

	b, err := os.ReadFile(e.cfg.Output.Out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")

	var first, last output.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, output.EventRunStarted, first.Type)
	assert.Equal(t, "run-test", first.RunID)
	assert.Equal(t, output.EventRunFinished, last.Type)
	assert.Equal(t, 1, last.Passed)
	assert.Equal(t, 1, last.Skipped)

	report, err := os.ReadFile(e.cfg.Output.Report)
	require.NoError(t, err)
	assert.Contains(t, string(report), "| ✓ | b_js | node |")
}

func TestRun_EmitJSON(t *testing.T) {
	e, stdout := newTestEngine(t, []string{"b_js"}, &scriptedRunner{})
	mkdirs(t, e.cfg.Workspace.Root, map[string]string{"b_js/package.json": "{}"})
	e.cfg.Output.NoConsole = true
	e.cfg.Output.Emit = []string{"json"}

	require.Equal(t, ExitClean, e.Run(context.Background()))

	var got []verify.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, workspace.KindNode, got[0].Kind)
}

func TestRun_SinkSetupFailureIsFatal(t *testing.T) {
	e, _ := newTestEngine(t, []string{"b_js"}, &scriptedRunner{})
	e.cfg.Output.Out = filepath.Join(t.TempDir(), "results.json")
	e.cfg.Output.OutFormat = "csv"

	assert.Equal(t, ExitFatal, e.Run(context.Background()))
}

func TestNewEngine_PassesToolchainEnv(t *testing.T) {
	cfg := config.New()
	cfg.Toolchain.Env = []string{"NPM_CONFIG_OFFLINE=true"}
	require.NoError(t, cfg.Validate())

	e := NewEngine(cfg, nil)
	py, ok := e.verifiers.Python.(*verify.PythonVerifier)
	require.True(t, ok)
	node, ok := e.verifiers.Node.(*verify.NodeVerifier)
	require.True(t, ok)
	assert.Equal(t, []string{"NPM_CONFIG_OFFLINE=true"}, py.Env)
	assert.Equal(t, []string{"NPM_CONFIG_OFFLINE=true"}, node.Env)
}

func TestExitCodeForRun(t *testing.T) {
	assert.Equal(t, ExitFatal, exitCodeForRun(true, true, true))
	assert.Equal(t, ExitPartial, exitCodeForRun(false, true, true))
	assert.Equal(t, ExitFailures, exitCodeForRun(false, false, true))
	assert.Equal(t, ExitClean, exitCodeForRun(false, false, false))
}

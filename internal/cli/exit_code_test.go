package cli

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	// internal/cli -> repo root
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func buildRepoEvalBinary(t *testing.T) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), "repoeval-test")
	if runtime.GOOS == "windows" {
		outPath += ".exe"
	}

	cmd := exec.Command("go", "build", "-o", outPath, "./cmd/repoeval")
	cmd.Dir = repoRoot(t)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build repoeval binary; output=%s", string(out))
	return outPath
}

func exitCodeOf(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	require.True(t, errors.As(err, &ee), "expected exit error, got %v", err)
	return ee.ExitCode()
}

func TestBinary_ExitCodes(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	bin := buildRepoEvalBinary(t)

	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "c_other"), 0o755))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "nothing exists", args: []string{"run", "--workspace", ws, "--repos", "missing_py"}, want: 0},
		{name: "unknown kind fails", args: []string{"run", "--workspace", ws, "--repos", "c_other"}, want: 1},
		{name: "invalid config", args: []string{"run", "--workspace", ws, "--repos", "x:cobol"}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(bin, tt.args...)
			cmd.Dir = t.TempDir()
			err := cmd.Run()
			require.Equal(t, tt.want, exitCodeOf(t, err))
		})
	}
}

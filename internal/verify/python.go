package verify

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"repoeval/internal/execx"
	"repoeval/internal/requirements"
	"repoeval/internal/workspace"

	"github.com/hashicorp/go-hclog"
)

const RequirementsFile = "requirements.txt"

// Importer probes whether a module can be imported.
// A clean "not importable" answer is (false, nil); an error means the probe
// itself broke.
type Importer interface {
	Import(ctx context.Context, module string) (bool, error)
}

// importExitMissing is the exit status the probe script uses for ImportError.
// Any other non-zero status is an unexpected failure of the probe.
const importExitMissing = 3

// importProbe imports sys.argv[1]. The working directory entry that -c puts
// at the front of sys.path is dropped, so files in whatever directory the
// probe runs from cannot stand in for an installed package.
const importProbe = `import importlib, sys
sys.path[:] = [p for p in sys.path if p not in ("", ".")]
try:
    importlib.import_module(sys.argv[1])
except ImportError:
    sys.exit(3)
`

// PythonImporter imports modules in a child interpreter that inherits the
// evaluator's working directory, never the repository's.
type PythonImporter struct {
	Runner execx.Runner
	// Python is the interpreter executable, e.g. "python3".
	Python string
	// Env holds extra KEY=VALUE entries for the interpreter.
	Env []string
}

func (p *PythonImporter) Import(ctx context.Context, module string) (bool, error) {
	out, err := p.Runner.Run(ctx, execx.Command{
		Name: p.Python,
		Args: []string{"-c", importProbe, module},
		Env:  p.Env,
	})
	if err != nil {
		return false, err
	}
	switch out.ExitCode {
	case 0:
		return true, nil
	case importExitMissing:
		return false, nil
	default:
		return false, fmt.Errorf("importing %q: %s", module, lastLine(out.Stderr))
	}
}

// PythonVerifier checks repositories that declare dependencies in a
// requirements file.
type PythonVerifier struct {
	Runner execx.Runner
	Python string
	// Env holds extra KEY=VALUE entries for every probe.
	Env    []string
	Logger hclog.Logger

	// newImporter is a test seam. If nil, a PythonImporter is used.
	newImporter func(repo workspace.Repository) Importer
}

func NewPythonVerifier(runner execx.Runner, python string, logger hclog.Logger) *PythonVerifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if python == "" {
		python = "python3"
	}
	return &PythonVerifier{Runner: runner, Python: python, Logger: logger}
}

func (v *PythonVerifier) importer(repo workspace.Repository) Importer {
	if v.newImporter != nil {
		return v.newImporter(repo)
	}
	return &PythonImporter{Runner: v.Runner, Python: v.Python, Env: v.Env}
}

func (v *PythonVerifier) Verify(ctx context.Context, repo workspace.Repository) Result {
	reqPath := filepath.Join(repo.Path, RequirementsFile)
	if _, err := os.Stat(reqPath); err != nil {
		return FailResult(repo, ReasonMissingManifest, fmt.Sprintf("No %s found in %s", RequirementsFile, repo.Path))
	}

	modules, err := requirements.ReadFile(reqPath)
	if err != nil {
		return unexpectedImportError(repo, err)
	}
	v.Logger.Debug("probing imports", "repo", repo.Name, "modules", len(modules))

	imp := v.importer(repo)
	var missing []string
	for _, m := range modules {
		ok, err := imp.Import(ctx, m)
		if err != nil {
			return unexpectedImportError(repo, err)
		}
		if !ok {
			missing = append(missing, m)
		}
	}

	if len(missing) > 0 {
		res := FailResult(repo, ReasonImportFailure, fmt.Sprintf("Missing packages in %s: %s", repo.Path, strings.Join(missing, ", ")))
		res.Missing = missing
		return res
	}
	return PassResult(repo, fmt.Sprintf("All packages in %s can be imported", repo.Path))
}

func unexpectedImportError(repo workspace.Repository, err error) Result {
	if err == nil {
		err = errors.New("unknown error")
	}
	return FailResult(repo, ReasonUnexpectedError, fmt.Sprintf("Error checking imports in %s: %v", repo.Path, err))
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "probe failed"
	}
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}

package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"repoeval/internal/execx"
	"repoeval/internal/workspace"

	"github.com/hashicorp/go-hclog"
)

const ManifestFile = "package.json"

// DefaultInstaller is the installer argv used when none is configured.
var DefaultInstaller = []string{"npm", "install"}

// NodeVerifier checks repositories with a package manifest by running the
// package installer inside them.
type NodeVerifier struct {
	Runner execx.Runner
	// Installer is the installer argv; Installer[0] is the executable.
	Installer []string
	// Env holds extra KEY=VALUE entries for the installer process.
	Env    []string
	Logger hclog.Logger
}

func NewNodeVerifier(runner execx.Runner, installer []string, logger hclog.Logger) *NodeVerifier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if len(installer) == 0 {
		installer = DefaultInstaller
	}
	return &NodeVerifier{Runner: runner, Installer: installer, Logger: logger}
}

func (v *NodeVerifier) Verify(ctx context.Context, repo workspace.Repository) Result {
	if _, err := os.Stat(filepath.Join(repo.Path, ManifestFile)); err != nil {
		return FailResult(repo, ReasonMissingManifest, fmt.Sprintf("No %s found in %s", ManifestFile, repo.Path))
	}

	cmd := execx.Command{Dir: repo.Path, Name: v.Installer[0], Args: v.Installer[1:], Env: v.Env}
	v.Logger.Debug("running installer", "repo", repo.Name, "command", cmd.String())

	out, err := v.Runner.Run(ctx, cmd)
	if err != nil {
		return FailResult(repo, ReasonUnexpectedError, fmt.Sprintf("Error checking %s packages in %s: %v", v.label(), repo.Path, err))
	}
	if !out.Success() {
		res := FailResult(repo, ReasonInstallerNonZeroExit, fmt.Sprintf("%s failed in %s: %s", cmd.String(), repo.Path, out.Stderr))
		res.Stderr = out.Stderr
		return res
	}
	return PassResult(repo, fmt.Sprintf("All %s packages in %s can be installed", v.label(), repo.Path))
}

// label names the package ecosystem after the installer binary.
func (v *NodeVerifier) label() string {
	return filepath.Base(v.Installer[0])
}

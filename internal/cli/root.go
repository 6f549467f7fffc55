package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"repoeval/internal/config"
	"repoeval/internal/flags"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var cfg = config.New()

var rootCmd = &cobra.Command{
	Use:   "repoeval",
	Short: "Check that workspace repositories exist and their dependencies resolve",
	Long: `repoeval walks a list of repository directories under a workspace root,
checks that each one exists, and verifies its declared dependencies:

  - Python repositories (name ending in _py): every module listed in
    requirements.txt must be importable by the configured interpreter.
  - Node.js repositories (name ending in _js or _cjs): the package installer
    (npm install by default) must succeed inside the repository.

Examples:
	# Evaluate the default repository list under ./agentic_workspace
	repoeval run

	# Evaluate an explicit list
	repoeval run --workspace ~/src --repos api_py,web_js,tools:python

	# Show what would be evaluated
	repoeval repos

	# Print build info
	repoeval version

Environment:
	A .env file in the working directory is loaded before flags are applied.
	` + config.EnvWorkspace + ` sets the workspace root when --workspace is not given.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadDotEnv(".env")
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every subprocess invocation)")
}

// loadDotEnv loads KEY=VALUE pairs from path without overriding variables that
// are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

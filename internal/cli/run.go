package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"repoeval/internal/config"
	"repoeval/internal/engine"
	"repoeval/internal/flags"
	"repoeval/internal/logging"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate every configured repository",
	Long: `Evaluate every configured repository, in order, and print a summary.

For each repository:
  1. The path <workspace>/<name> must exist and be a directory. Repositories
     that fail this check are reported and left out of the summary.
  2. The repository kind selects the dependency check. The kind comes from the
     config file or --repos NAME:KIND, otherwise from the name suffix
     (_py = python, _js/_cjs = node). Any other repository is recorded as
     failed with "Unknown repository type".

Configuration precedence: flags, then environment, then --config file, then
built-in defaults.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write a Markdown report
	- --no-console: suppress the console sink

Exit codes:
	0 = every evaluated repository passed
	1 = at least one repository failed verification
	2 = partial failure (a check could not run, e.g. installer not found,
	    or the run was interrupted)
	3 = fatal error (evaluation did not run)

Examples:
  repoeval run
  repoeval run --config repoeval.yaml --report eval.md
  repoeval run --repos ipfs_accelerate_py --python python3.11 --verbose
  repoeval run --no-console --emit ndjson
  repoeval run --env NPM_CONFIG_OFFLINE=true --env PYTHONNOUSERSITE=1
`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runEvaluation(cmd, cfg))
	},
}

// prepareConfig layers the config file and environment under the flags and
// validates the result.
func prepareConfig(cmd *cobra.Command, cfg *config.Config) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if cfg.Runtime.ConfigFile != "" {
		if err := cfg.ApplyFile(cfg.Runtime.ConfigFile, changed); err != nil {
			return err
		}
	}
	cfg.ApplyEnv(changed)
	return cfg.Validate()
}

func runEvaluation(cmd *cobra.Command, cfg *config.Config) int {
	if err := prepareConfig(cmd, cfg); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return engine.ExitFatal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := logging.New(cmd.ErrOrStderr(), cfg.Runtime.Verbose)
	eng := engine.NewEngine(cfg, logger)
	eng.SetOutput(cmd.OutOrStdout())
	return eng.Run(ctx)
}

// addWorkspaceFlags registers the flags that select what gets evaluated.
func addWorkspaceFlags(cmd *cobra.Command, cfg *config.Config) {
	cmd.Flags().StringVar(&cfg.Runtime.ConfigFile, flags.FlagConfig, "", "YAML config file")
	cmd.Flags().StringVar(&cfg.Workspace.Root, flags.FlagWorkspace, cfg.Workspace.Root, "Workspace root that repository names are resolved against")
	cmd.Flags().StringSliceVar(&cfg.Workspace.RepoArgs, flags.FlagRepos, nil, "Repositories as NAME or NAME:KIND (repeatable; comma-separated accepted; replaces the configured list)")
}

func init() {
	rootCmd.AddCommand(runCmd)

	// MAINTAINER NOTE: flags that can also come from the config file must be
	// honored by config.ApplyFile (it skips values whose flag was set).

	// Workspace
	addWorkspaceFlags(runCmd, cfg)

	// Toolchain
	runCmd.Flags().StringVar(&cfg.Toolchain.Python, flags.FlagPython, cfg.Toolchain.Python, "Python interpreter used to probe imports")
	runCmd.Flags().StringVar(&cfg.Toolchain.Installer, flags.FlagInstaller, cfg.Toolchain.Installer, "Package installer command run inside node repositories")
	runCmd.Flags().StringArrayVar(&cfg.Toolchain.Env, flags.FlagEnv, nil, "Extra KEY=VALUE environment for the import probes and the installer (repeatable)")

	// Output
	runCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson")
	runCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	runCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	runCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	runCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	runCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")
}

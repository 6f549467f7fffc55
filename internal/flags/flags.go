// Package flags holds the names of the run and repos flags. The config layer
// uses the same names to tell whether a value came from the command line, so
// a flag always wins over the environment and the config file.
// Names are given without leading dashes:
//
//	cmd.Flags().StringVar(&cfg.Workspace.Root, flags.FlagWorkspace, "", "...")
//	arg := "--" + flags.FlagWorkspace
package flags

const (
	// Workspace
	FlagConfig    = "config"
	FlagWorkspace = "workspace"
	FlagRepos     = "repos"

	// Toolchain
	FlagPython    = "python"
	FlagInstaller = "installer"
	FlagEnv       = "env"

	// Output
	FlagConsoleFormat = "console-format"
	FlagReport        = "report"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagEmit          = "emit"
	FlagNoConsole     = "no-console"

	// Runtime
	FlagVerbose = "verbose"
)

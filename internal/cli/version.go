package cli

import (
	"fmt"
	"runtime"

	"repoeval/internal/config"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information and the default toolchain",
	Long: `Print the repoeval build, the Go runtime it was built with, and the
interpreter and installer that "repoeval run" uses when neither the config
file nor a flag overrides them.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version, commit, date := BuildInfo()
		defaults := config.New()
		fmt.Fprintf(cmd.OutOrStdout(), "repoeval %s (commit %s, built %s, %s)\n", version, commit, date, runtime.Version())
		fmt.Fprintf(cmd.OutOrStdout(), "python:    %s\ninstaller: %s\n", defaults.Toolchain.Python, defaults.Toolchain.Installer)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

package cli

import (
	"fmt"
	"io"

	"repoeval/internal/workspace"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories that would be evaluated",
	Long: `List the configured repositories in evaluation order, with the kind
that selects their dependency check and the resolved path.

Nothing is installed or imported. Missing directories are marked.

Examples:
  repoeval repos
  repoeval repos --config repoeval.yaml
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prepareConfig(cmd, cfg); err != nil {
			return err
		}
		printRepos(cmd.OutOrStdout(), cfg.Repositories())
		return nil
	},
}

func printRepos(w io.Writer, repos []workspace.Repository) {
	bold := color.New(color.Bold)
	missing := color.New(color.FgYellow)
	for _, r := range repos {
		bold.Fprintf(w, "%s", r.Name)
		fmt.Fprintf(w, "\t%s\t%s", r.Kind, r.Path)
		if check := workspace.CheckExists(r.Path); !check.OK {
			missing.Fprintf(w, "\t(%s)", check.Reason)
		}
		fmt.Fprintln(w)
	}
}

func init() {
	rootCmd.AddCommand(reposCmd)
	addWorkspaceFlags(reposCmd, cfg)
}

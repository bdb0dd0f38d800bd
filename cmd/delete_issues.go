package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/migrate"
)

type deleteIssuesOptions struct {
	dryRun          bool
	yes             bool
	preserveFile    string
	preserveTitles  []string
	preserveLabels  []string
	preserveNumbers []int
}

// isTerminal reports whether stdin is interactive; tests replace it.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// NewDeleteIssuesCmd creates the delete-issues command
func NewDeleteIssuesCmd(globals *globalOptions) *cobra.Command {
	opts := &deleteIssuesOptions{}

	cmd := &cobra.Command{
		Use:   "delete-issues",
		Short: "Delete every issue in the destination repository",
		Long: `Delete every issue in the configured GitHub repository, for example to reset a
test repository between migration runs. Issues matching a preserve rule are kept.
Deleting issues requires admin permissions on the repository and cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeleteIssues(cmd, globals, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "list the issues that would be deleted without deleting them")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().StringVar(&opts.preserveFile, "preserve-file", "", "YAML file with preserve rules")
	cmd.Flags().StringSliceVar(&opts.preserveTitles, "preserve-title", nil, "keep issues with this title (/regex/ allowed)")
	cmd.Flags().StringSliceVar(&opts.preserveLabels, "preserve-label", nil, "keep issues carrying this label")
	cmd.Flags().IntSliceVar(&opts.preserveNumbers, "preserve-number", nil, "keep the issue with this number")
	return cmd
}

func runDeleteIssues(cmd *cobra.Command, globals *globalOptions, opts *deleteIssuesOptions) error {
	v, err := loadSettings(cmd.Flags(), globals, map[string]string{})
	if err != nil {
		return err
	}
	cfg := config.Load(v)
	if err := cfg.ValidateDestination(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	preserve, err := config.LoadPreserveConfig(ctx, opts.preserveFile)
	if err != nil {
		return err
	}
	preserve.Issues.PreserveByTitle = append(preserve.Issues.PreserveByTitle, opts.preserveTitles...)
	preserve.Issues.PreserveByLabel = append(preserve.Issues.PreserveByLabel, opts.preserveLabels...)
	preserve.Issues.PreserveByNumber = append(preserve.Issues.PreserveByNumber, opts.preserveNumbers...)

	repo := cfg.Destination.Organization + "/" + cfg.Destination.Repository
	if !opts.dryRun && !opts.yes {
		confirmed, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), repo)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted, no issues were deleted")
			return nil
		}
	}

	logger := common.NewLoggerWithWriter(cmd.ErrOrStderr(), cfg.Debug)
	client, err := newDestinationClient(cfg, logger)
	if err != nil {
		return err
	}

	summary, err := migrate.DeleteAllIssues(ctx, client, migrate.CleanupOptions{
		DryRun:         opts.dryRun,
		PreserveConfig: preserve,
	}, logger)
	if summary != nil {
		verb := "Deleted"
		if opts.dryRun {
			verb = "Would delete"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d issues in %s, preserved %d\n", verb, summary.Deleted, repo, summary.Preserved)
	}
	return err
}

// confirm asks the user to type the repository name. A non-interactive stdin
// never confirms; --yes is required there.
func confirm(in io.Reader, out io.Writer, repo string) (bool, error) {
	if !isTerminal() {
		return false, errors.ConfigError("confirm_delete", "refusing to delete issues without confirmation; pass --yes when stdin is not a terminal", nil)
	}
	fmt.Fprintf(out, "This permanently deletes all issues in %s. Type the repository name to continue: ", repo)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.FileError("confirm_delete", "failed to read confirmation", err)
	}
	return strings.TrimSpace(line) == repo, nil
}

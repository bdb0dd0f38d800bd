// Package cmd wires the command line interface: the root command with its
// global flags, the migrate command and the delete-issues cleanup command.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/azuredevops"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/githubapi"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	debug      bool
}

var rootCmd = NewRootCmd()

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	globals := &globalOptions{}
	root := &cobra.Command{
		Use:   "ado2gh",
		Short: "Migrate Azure DevOps work items to GitHub issues",
		Long: `Migrate Azure DevOps work items to GitHub issues.

Settings are read from the environment (ADO_ORGANIZATION, ADO_PROJECT, ADO_TOKEN,
ADO_AREA_PATH, GH_ORGANIZATION, GH_REPOSITORY, GH_TOKEN, ...), from an optional
--config file (YAML, JSON, TOML or .env) and from command flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&globals.configFile, "config", "", "configuration file (defaults to .env in the working directory when present)")
	root.PersistentFlags().BoolVar(&globals.debug, "debug", false, "enable debug logging")

	root.AddCommand(NewMigrateCmd(globals))
	root.AddCommand(NewDeleteIssuesCmd(globals))
	return root
}

// Execute runs the root command. An interrupt cancels the running operation.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// newSourceClient creates the Azure DevOps client; tests replace it.
var newSourceClient = func(ctx context.Context, cfg *config.Config, logger common.Logger) (azuredevops.WorkItemClient, error) {
	client, err := azuredevops.NewClient(ctx, cfg.Source.Organization, cfg.Source.Project, cfg.Source.Token)
	if err != nil {
		return nil, err
	}
	client.SetLogger(logger)
	return client, nil
}

// newDestinationClient creates the GitHub client; tests replace it.
var newDestinationClient = func(cfg *config.Config, logger common.Logger) (githubapi.GitHubClient, error) {
	client, err := githubapi.NewGHClient(cfg.Destination.Organization, cfg.Destination.Repository, cfg.Destination.Host, cfg.Destination.Token)
	if err != nil {
		return nil, err
	}
	client.SetLogger(logger)
	return client, nil
}

// loadSettings layers defaults, the config file, the environment and the
// given flag bindings into one viper instance.
func loadSettings(flags *pflag.FlagSet, globals *globalOptions, bindings map[string]string) (*viper.Viper, error) {
	v := config.New()
	if err := config.ReadFile(v, globals.configFile); err != nil {
		return nil, err
	}
	if flags.Lookup("debug") != nil {
		bindings[config.KeyDebug] = "debug"
	}
	if err := config.BindFlags(v, flags, bindings); err != nil {
		return nil, err
	}
	return v, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

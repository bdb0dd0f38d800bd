package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/migrate"
)

// NewMigrateCmd creates the migrate command
func NewMigrateCmd(globals *globalOptions) *cobra.Command {
	var reportPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create one GitHub issue per eligible work item and link them",
		Long: `Migrate every work item under the configured area path that has not been
migrated yet. Each work item becomes an issue labelled with its type, carrying a
metadata comment with the work item details, comments and raw JSON. Once all
issues exist, Child, Related and Predecessor links are added to the issue bodies
as tasklists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, globals, reportPath)
		},
	}

	cmd.Flags().String("area-path", "", "area path to migrate, including sub-areas (ADO_AREA_PATH)")
	cmd.Flags().Bool("migrate-closed", false, "also migrate closed work items and close their issues")
	cmd.Flags().Bool("tag-migrated", false, "tag migrated work items and link the issue from a work item comment")
	cmd.Flags().String("migrated-tag", config.DefaultMigratedTag, "tag marking migrated work items")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency, "issues updated in parallel while linking")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a YAML report mapping work items to issues")
	return cmd
}

var migrateFlagBindings = map[string]string{
	config.KeyADOAreaPath:   "area-path",
	config.KeyMigrateClosed: "migrate-closed",
	config.KeyTagMigrated:   "tag-migrated",
	config.KeyMigratedTag:   "migrated-tag",
	config.KeyConcurrency:   "concurrency",
}

func runMigrate(cmd *cobra.Command, globals *globalOptions, reportPath string) error {
	bindings := make(map[string]string, len(migrateFlagBindings)+1)
	for key, flag := range migrateFlagBindings {
		bindings[key] = flag
	}
	v, err := loadSettings(cmd.Flags(), globals, bindings)
	if err != nil {
		return err
	}
	cfg := config.Load(v)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := commandContext(cmd)
	logger := common.NewLoggerWithWriter(cmd.ErrOrStderr(), cfg.Debug)
	logger.Info("Migrating %s/%s area '%s' to %s/%s", cfg.Source.Organization, cfg.Source.Project,
		cfg.Source.AreaPath, cfg.Destination.Organization, cfg.Destination.Repository)

	source, err := newSourceClient(ctx, cfg, logger)
	if err != nil {
		return err
	}
	dest, err := newDestinationClient(cfg, logger)
	if err != nil {
		return err
	}

	migrator := migrate.New(source, dest, migrate.Options{
		Organization:  cfg.Source.Organization,
		Project:       cfg.Source.Project,
		AreaPath:      cfg.Source.AreaPath,
		MigratedTag:   cfg.MigratedTag,
		MigrateClosed: cfg.MigrateClosed,
		TagMigrated:   cfg.TagMigrated,
		Concurrency:   cfg.Concurrency,
	}, logger)

	result, runErr := migrator.Run(ctx)
	if reportPath != "" && result != nil {
		if err := migrate.WriteReport(reportPath, result); err != nil {
			logger.Error("Failed to write report: %v", err)
			if runErr == nil {
				return err
			}
		} else {
			logger.Info("Report written to %s", reportPath)
		}
	}
	if runErr != nil {
		if result != nil && result.Created > 0 {
			logger.Warn("Run aborted after creating %d issues; tagged work items are skipped on the next run", result.Created)
		}
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Migration completed: %s\n", result)
	return nil
}

// Package config provides application configuration constants and default values.
// This centralizes setting names and defaults to improve maintainability.
package config

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
)

// Setting keys. Each key is also read from the environment variable of the
// same name in upper case (ado_token is read from ADO_TOKEN).
const (
	KeyADOOrganization = "ado_organization"
	KeyADOProject      = "ado_project"
	KeyADOToken        = "ado_token"
	KeyADOAreaPath     = "ado_area_path"

	KeyGHOrganization = "gh_organization"
	KeyGHRepository   = "gh_repository"
	KeyGHToken        = "gh_token"
	KeyGHHost         = "gh_host"

	KeyMigrateClosed = "opt_migrate_closed_workitems"
	KeyTagMigrated   = "opt_add_tag_migrated_to_github"
	KeyMigratedTag   = "opt_migrated_tag"
	KeyConcurrency   = "opt_concurrency"

	KeyDebug = "debug"
)

const (
	// DefaultMigratedTag marks work items that were already migrated
	DefaultMigratedTag = "migrated-to-github"

	// DefaultConcurrency is the number of issues updated in parallel while linking
	DefaultConcurrency = 4

	// DefaultGitHubHost is used when gh_host is not set
	DefaultGitHubHost = "github.com"

	// DotEnvFilename is read from the working directory when no config file is given
	DotEnvFilename = ".env"
)

// PreserveConfig lists issues that survive the delete-issues command. Entries
// are exact values or regular expressions wrapped in slashes.
type PreserveConfig struct {
	Issues struct {
		PreserveByTitle  []string `yaml:"preserve_by_title,omitempty"`
		PreserveByLabel  []string `yaml:"preserve_by_label,omitempty"`
		PreserveByNumber []int    `yaml:"preserve_by_number,omitempty"`
	} `yaml:"issues,omitempty"`
}

// LoadPreserveConfig loads the preserve configuration from the specified file path.
// An empty path preserves nothing; a path that does not exist is an error.
func LoadPreserveConfig(ctx context.Context, filePath string) (*PreserveConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if filePath == "" {
		return &PreserveConfig{}, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		err = errors.FileError("read_preserve_config", "failed to read preserve configuration file", err)
		return nil, errors.WithContextSafe(err, "path", filePath)
	}

	var config PreserveConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.FileError("parse_preserve_config", "failed to parse preserve configuration YAML", err)
	}

	return &config, nil
}

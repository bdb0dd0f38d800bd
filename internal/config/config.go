package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/cli/go-gh/v2/pkg/auth"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
)

// SourceConfig holds the Azure DevOps settings.
type SourceConfig struct {
	Organization string
	Project      string
	Token        string
	AreaPath     string
}

// DestinationConfig holds the GitHub settings.
type DestinationConfig struct {
	Organization string
	Repository   string
	Token        string
	Host         string
}

// Config is the validated run configuration, read once at startup.
type Config struct {
	Source      SourceConfig
	Destination DestinationConfig

	MigrateClosed bool
	TagMigrated   bool
	MigratedTag   string
	Concurrency   int
	Debug         bool
}

// tokenForHost resolves a GitHub token from the gh CLI configuration.
var tokenForHost = func(host string) string {
	token, _ := auth.TokenForHost(host)
	return token
}

// New creates a viper instance reading every key from the environment, with defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		KeyADOOrganization, KeyADOProject, KeyADOToken, KeyADOAreaPath,
		KeyGHOrganization, KeyGHRepository, KeyGHToken, KeyGHHost,
		KeyMigrateClosed, KeyTagMigrated, KeyMigratedTag, KeyConcurrency, KeyDebug,
	} {
		_ = v.BindEnv(key, strings.ToUpper(key))
	}

	v.SetDefault(KeyGHHost, DefaultGitHubHost)
	v.SetDefault(KeyMigrateClosed, false)
	v.SetDefault(KeyTagMigrated, false)
	v.SetDefault(KeyMigratedTag, DefaultMigratedTag)
	v.SetDefault(KeyConcurrency, DefaultConcurrency)
	v.SetDefault(KeyDebug, false)
	return v
}

// ReadFile merges settings from path into v. An empty path falls back to a
// .env file in the working directory when one exists. Environment variables
// keep precedence over file values.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		if _, err := os.Stat(DotEnvFilename); err != nil {
			return nil
		}
		path = DotEnvFilename
	}

	v.SetConfigFile(path)
	if strings.HasSuffix(path, DotEnvFilename) {
		v.SetConfigType("env")
	}
	if err := v.ReadInConfig(); err != nil {
		return errors.ConfigError("read_config", fmt.Sprintf("failed to read configuration file %s", path), err)
	}
	return nil
}

// BindFlags binds command flags to setting keys so flags override env and file values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for key, flagName := range bindings {
		flag := flags.Lookup(flagName)
		if flag == nil {
			return errors.ConfigError("bind_flags", fmt.Sprintf("unknown flag --%s", flagName), nil)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.ConfigError("bind_flags", fmt.Sprintf("failed to bind flag --%s", flagName), err)
		}
	}
	return nil
}

// Load builds a Config from v. It does not validate; call Validate or
// ValidateDestination before any network call.
func Load(v *viper.Viper) *Config {
	cfg := &Config{
		Source: SourceConfig{
			Organization: strings.TrimSpace(v.GetString(KeyADOOrganization)),
			Project:      strings.TrimSpace(v.GetString(KeyADOProject)),
			Token:        strings.TrimSpace(v.GetString(KeyADOToken)),
			AreaPath:     strings.TrimSpace(v.GetString(KeyADOAreaPath)),
		},
		Destination: DestinationConfig{
			Organization: strings.TrimSpace(v.GetString(KeyGHOrganization)),
			Repository:   strings.TrimSpace(v.GetString(KeyGHRepository)),
			Token:        strings.TrimSpace(v.GetString(KeyGHToken)),
			Host:         strings.TrimSpace(v.GetString(KeyGHHost)),
		},
		MigrateClosed: v.GetBool(KeyMigrateClosed),
		TagMigrated:   v.GetBool(KeyTagMigrated),
		MigratedTag:   strings.TrimSpace(v.GetString(KeyMigratedTag)),
		Concurrency:   v.GetInt(KeyConcurrency),
		Debug:         v.GetBool(KeyDebug),
	}
	if cfg.Destination.Host == "" {
		cfg.Destination.Host = DefaultGitHubHost
	}
	if cfg.Destination.Token == "" {
		cfg.Destination.Token = tokenForHost(cfg.Destination.Host)
	}
	return cfg
}

// Validate checks every setting needed by a migration run and reports all
// missing keys in a single configuration error.
func (c *Config) Validate() error {
	missing := c.missingDestination()
	if c.Source.Organization == "" {
		missing = append(missing, KeyADOOrganization)
	}
	if c.Source.Project == "" {
		missing = append(missing, KeyADOProject)
	}
	if c.Source.Token == "" {
		missing = append(missing, KeyADOToken)
	}
	if c.Source.AreaPath == "" {
		missing = append(missing, KeyADOAreaPath)
	}
	if c.MigratedTag == "" {
		missing = append(missing, KeyMigratedTag)
	}
	if err := missingError(missing); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return errors.ConfigError("validate", fmt.Sprintf("%s must be at least 1, got %d", KeyConcurrency, c.Concurrency), nil)
	}
	return nil
}

// ValidateDestination checks the settings needed to talk to GitHub only.
func (c *Config) ValidateDestination() error {
	return missingError(c.missingDestination())
}

func (c *Config) missingDestination() []string {
	var missing []string
	if c.Destination.Organization == "" {
		missing = append(missing, KeyGHOrganization)
	}
	if c.Destination.Repository == "" {
		missing = append(missing, KeyGHRepository)
	}
	if c.Destination.Token == "" {
		missing = append(missing, KeyGHToken)
	}
	return missing
}

func missingError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, key := range missing {
		names[i] = strings.ToUpper(key)
	}
	return errors.ConfigError("validate", fmt.Sprintf("missing required settings: %s", strings.Join(names, ", ")), nil)
}

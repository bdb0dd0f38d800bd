package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/azuredevops"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/common"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/githubapi"
)

// executeCommand runs a fresh command tree and captures its output
func executeCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// setEnv sets every setting read by the migrate command
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	values := map[string]string{
		"ADO_ORGANIZATION":               "contoso",
		"ADO_PROJECT":                    "web",
		"ADO_TOKEN":                      "ado-pat",
		"ADO_AREA_PATH":                  "web",
		"GH_ORGANIZATION":                "octo",
		"GH_REPOSITORY":                  "migrated",
		"GH_TOKEN":                       "gh-token",
		"GH_HOST":                        "",
		"OPT_MIGRATE_CLOSED_WORKITEMS":   "",
		"OPT_ADD_TAG_MIGRATED_TO_GITHUB": "",
		"OPT_MIGRATED_TAG":               "",
		"OPT_CONCURRENCY":                "",
		"DEBUG":                          "",
	}
	for k, v := range overrides {
		values[k] = v
	}
	for k, v := range values {
		t.Setenv(k, v)
	}
}

// stubClients replaces the client constructors for the duration of the test
func stubClients(t *testing.T, source azuredevops.WorkItemClient, dest githubapi.GitHubClient) {
	t.Helper()
	oldSource, oldDest := newSourceClient, newDestinationClient
	newSourceClient = func(ctx context.Context, cfg *config.Config, logger common.Logger) (azuredevops.WorkItemClient, error) {
		return source, nil
	}
	newDestinationClient = func(cfg *config.Config, logger common.Logger) (githubapi.GitHubClient, error) {
		return dest, nil
	}
	t.Cleanup(func() {
		newSourceClient, newDestinationClient = oldSource, oldDest
	})
}

func TestExecute(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"ado2gh", "--help"}
	if err := Execute(); err != nil {
		t.Errorf("Execute() with --help should not return error, got: %v", err)
	}
}

func TestExecuteWithError(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"ado2gh", "invalid-command"}
	if err := Execute(); err == nil {
		t.Error("Execute() with invalid command should return an error")
	}
}

func TestRootCommandStructure(t *testing.T) {
	if rootCmd.Use != "ado2gh" {
		t.Errorf("unexpected root command name %q", rootCmd.Use)
	}

	found := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		found[cmd.Name()] = true
	}
	for _, name := range []string{"migrate", "delete-issues"} {
		if !found[name] {
			t.Errorf("expected %s command to be registered", name)
		}
	}

	for _, flag := range []string{"config", "debug"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected persistent flag --%s", flag)
		}
	}
}

func TestHelpOutput(t *testing.T) {
	stdout, _, err := executeCommand(t, "", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Migrate Azure DevOps work items to GitHub issues") {
		t.Errorf("help output missing description: %s", stdout)
	}
}

func TestUnexpectedArguments(t *testing.T) {
	_, _, err := executeCommand(t, "", "migrate", "extra")
	if err == nil {
		t.Error("expected error for positional arguments")
	}
}

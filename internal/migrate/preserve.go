package migrate

import (
	"regexp"
	"strings"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/config"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// checkPreservationByNumber checks if an issue should be preserved based on its number
func checkPreservationByNumber(number int, preserveByNumber []int) bool {
	for _, n := range preserveByNumber {
		if number == n {
			return true
		}
	}
	return false
}

// checkPreservationByTitle checks if an issue should be preserved based on its title patterns
func checkPreservationByTitle(title string, preserveByTitle []string) bool {
	for _, pattern := range preserveByTitle {
		if isMatchOrRegex(title, pattern) {
			return true
		}
	}
	return false
}

// checkPreservationByLabels checks if an issue should be preserved based on its labels
func checkPreservationByLabels(issueLabels []string, preserveByLabel []string) bool {
	for _, preserveLabel := range preserveByLabel {
		for _, label := range issueLabels {
			if strings.EqualFold(label, preserveLabel) {
				return true
			}
		}
	}
	return false
}

// ShouldPreserveIssue checks if an issue should be preserved based on the configuration.
func ShouldPreserveIssue(preserveConfig *config.PreserveConfig, issue types.Issue) bool {
	if preserveConfig == nil {
		return false
	}
	return checkPreservationByNumber(issue.Number, preserveConfig.Issues.PreserveByNumber) ||
		checkPreservationByTitle(issue.Title, preserveConfig.Issues.PreserveByTitle) ||
		checkPreservationByLabels(issue.Labels, preserveConfig.Issues.PreserveByLabel)
}

// isMatchOrRegex checks if a string matches a pattern exactly, or as a regular
// expression when the pattern is wrapped in slashes ("/^WIP/").
func isMatchOrRegex(value, pattern string) bool {
	if value == pattern {
		return true
	}

	if len(pattern) > 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		if regex, err := regexp.Compile(pattern[1 : len(pattern)-1]); err == nil {
			return regex.MatchString(value)
		}
	}

	return false
}

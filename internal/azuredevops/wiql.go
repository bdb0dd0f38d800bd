package azuredevops

import (
	"fmt"
	"strings"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// BuildQuery renders the WIQL query selecting the work items eligible for
// migration. It encodes the same rule as types.QueryFilter.Matches.
func BuildQuery(filter types.QueryFilter) string {
	var b strings.Builder
	b.WriteString("select [System.Id], [System.Title], [System.Tags] from WorkItems where ")
	if !filter.IncludeClosed {
		for _, state := range types.ClosedStates {
			fmt.Fprintf(&b, "[System.State] <> '%s' and ", quote(state))
		}
	}
	fmt.Fprintf(&b, "[System.AreaPath] UNDER '%s'", quote(filter.AreaPath))
	if filter.MigratedTag != "" {
		fmt.Fprintf(&b, " and not [System.Tags] Contains '%s'", quote(filter.MigratedTag))
	}
	b.WriteString(" order by [System.Id]")
	return b.String()
}

// quote escapes a WIQL string literal.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

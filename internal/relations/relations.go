// Package relations extracts typed links between work items and renders them as
// GitHub tasklists pointing at the migrated issues.
package relations

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ahacke/ado-workitems-to-github-issues/internal/errors"
	"github.com/ahacke/ado-workitems-to-github-issues/internal/types"
)

// Relation kinds as named in the work item relation attributes.
const (
	KindChild       = "Child"
	KindRelated     = "Related"
	KindPredecessor = "Predecessor"
)

const (
	tasklistStart       = "\n\n```[tasklist]"
	tasklistNamePrefix  = "\n### "
	tasklistEntryPrefix = "\n- [ ] "
	tasklistEnd         = "\n```"
)

// Section pairs a relation kind with the tasklist title it is rendered under.
type Section struct {
	Kind  string
	Title string
}

// Sections lists the tasklists appended to an issue body, in output order.
var Sections = []Section{
	{Kind: KindChild, Title: "Children"},
	{Kind: KindRelated, Title: "Related"},
	{Kind: KindPredecessor, Title: "Predecessors"},
}

// IssueLookup resolves a work item id to its migrated issue.
type IssueLookup interface {
	Get(workItemID int) (*types.Issue, bool)
}

// TargetIDs returns the distinct ids of the work items linked from item with
// the given relation kind. Every relation must carry attributes and a URL;
// malformed relations are integrity errors rather than being skipped.
func TargetIDs(item *types.WorkItem, kind string) (map[int]struct{}, error) {
	ids := make(map[int]struct{})
	for _, rel := range item.Relations {
		if rel.Attributes == nil || rel.URL == "" {
			err := errors.IntegrityError("resolve_relations",
				fmt.Sprintf("relation misses attributes or url (rel=%q, url=%q)", rel.Rel, rel.URL), nil)
			return nil, errors.WithContextSafe(err, "work_item_id", strconv.Itoa(item.ID))
		}
		if rel.Name() != kind {
			continue
		}
		id, err := WorkItemIDFromURL(rel.URL)
		if err != nil {
			return nil, errors.WithContextSafe(err, "work_item_id", strconv.Itoa(item.ID))
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// WorkItemIDFromURL parses the work item id from the last path segment of a
// relation URL such as https://dev.azure.com/org/_apis/wit/workItems/42.
func WorkItemIDFromURL(url string) (int, error) {
	segment := url[strings.LastIndex(url, "/")+1:]
	id, err := strconv.Atoi(segment)
	if err != nil {
		return 0, errors.IntegrityError("resolve_relations",
			fmt.Sprintf("relation url %q does not end in a work item id", url), err)
	}
	return id, nil
}

// SortedIDs returns the ids of a set in ascending order.
func SortedIDs(ids map[int]struct{}) []int {
	sorted := make([]int, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Ints(sorted)
	return sorted
}

// Tasklist renders a titled tasklist with one unchecked entry per target. An
// empty set renders nothing. Targets missing from the lookup keep their entry
// with an empty link.
func Tasklist(ids map[int]struct{}, lookup IssueLookup, title string) string {
	if len(ids) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(tasklistStart)
	b.WriteString(tasklistNamePrefix)
	b.WriteString(title)
	for _, id := range SortedIDs(ids) {
		url := ""
		if issue, ok := lookup.Get(id); ok && issue != nil {
			url = issue.URL
		}
		b.WriteString(tasklistEntryPrefix)
		b.WriteString(url)
	}
	b.WriteString(tasklistEnd)
	return b.String()
}

// Rendered is the result of rendering every section for one work item.
type Rendered struct {
	Tasklists string // concatenated tasklists in section order
	Missing   []int  // targets that were not found in the lookup
	Links     int    // total number of rendered entries
}

// Render resolves and renders all sections for item.
func Render(item *types.WorkItem, lookup IssueLookup) (*Rendered, error) {
	result := &Rendered{}
	var b strings.Builder
	for _, section := range Sections {
		ids, err := TargetIDs(item, section.Kind)
		if err != nil {
			return nil, err
		}
		for _, id := range SortedIDs(ids) {
			if _, ok := lookup.Get(id); !ok {
				result.Missing = append(result.Missing, id)
			}
		}
		result.Links += len(ids)
		b.WriteString(Tasklist(ids, lookup, section.Title))
	}
	result.Tasklists = b.String()
	return result, nil
}

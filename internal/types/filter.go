package types

import "strings"

// QueryFilter selects the work items eligible for migration.
type QueryFilter struct {
	AreaPath      string
	IncludeClosed bool
	MigratedTag   string
}

// Matches applies the eligibility rule to an already fetched work item: the area
// path is under the configured area, the sentinel tag is absent and, unless
// closed items are included, the state is not a closed state.
func (f QueryFilter) Matches(item *WorkItem) bool {
	if item == nil {
		return false
	}
	if !IsUnderAreaPath(item.AreaPath, f.AreaPath) {
		return false
	}
	if f.MigratedTag != "" && item.HasTag(f.MigratedTag) {
		return false
	}
	if !f.IncludeClosed && item.IsClosed() {
		return false
	}
	return true
}

// IsUnderAreaPath mirrors the WIQL UNDER operator: the path equals the area or
// is one of its descendants. Comparison is case-insensitive.
func IsUnderAreaPath(path, area string) bool {
	if area == "" {
		return true
	}
	if strings.EqualFold(path, area) {
		return true
	}
	prefix := strings.TrimRight(area, `\`) + `\`
	return len(path) > len(prefix) && strings.EqualFold(path[:len(prefix)], prefix)
}

// ParseTags splits the semicolon separated System.Tags value.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags renders tags back into the System.Tags format.
func JoinTags(tags []string) string {
	return strings.Join(tags, "; ")
}

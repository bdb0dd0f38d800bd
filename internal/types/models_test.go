package types

import (
	"testing"
)

// TestWorkItemIsClosed tests closed state detection for every state class
func TestWorkItemIsClosed(t *testing.T) {
	tests := []struct {
		state    string
		expected bool
	}{
		{state: "Done", expected: true},
		{state: "Closed", expected: true},
		{state: "Resolved", expected: true},
		{state: "Removed", expected: true},
		{state: "Active", expected: false},
		{state: "New", expected: false},
		{state: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			item := &WorkItem{State: tt.state}
			if got := item.IsClosed(); got != tt.expected {
				t.Errorf("IsClosed() for state %q = %v, expected %v", tt.state, got, tt.expected)
			}
		})
	}
}

// TestRelationName tests reading the relation kind from attributes
func TestRelationName(t *testing.T) {
	rel := Relation{Attributes: map[string]interface{}{"name": "Child", "isLocked": false}}
	if rel.Name() != "Child" {
		t.Errorf("Expected name 'Child', got %q", rel.Name())
	}

	if (Relation{}).Name() != "" {
		t.Error("Expected empty name for relation without attributes")
	}

	nonString := Relation{Attributes: map[string]interface{}{"name": 42}}
	if nonString.Name() != "" {
		t.Error("Expected empty name for non-string name attribute")
	}
}

// TestParseAndJoinTags tests the System.Tags round trip format
func TestParseAndJoinTags(t *testing.T) {
	tags := ParseTags(" backend;  migrated-to-github ;;")
	if len(tags) != 2 || tags[0] != "backend" || tags[1] != "migrated-to-github" {
		t.Fatalf("Unexpected tags: %#v", tags)
	}
	if got := JoinTags(tags); got != "backend; migrated-to-github" {
		t.Errorf("JoinTags() = %q", got)
	}
	if ParseTags("   ") != nil {
		t.Error("Expected nil tags for blank input")
	}
}

// TestQueryFilterMatches tests the in-memory eligibility rule
func TestQueryFilterMatches(t *testing.T) {
	base := func() *WorkItem {
		return &WorkItem{ID: 1, AreaPath: `Project\Team A`, State: "Active"}
	}

	tests := []struct {
		name     string
		filter   QueryFilter
		mutate   func(w *WorkItem)
		expected bool
	}{
		{
			name:     "exact area path",
			filter:   QueryFilter{AreaPath: `Project\Team A`, MigratedTag: "migrated-to-github"},
			expected: true,
		},
		{
			name:     "child area path",
			filter:   QueryFilter{AreaPath: `Project`, MigratedTag: "migrated-to-github"},
			expected: true,
		},
		{
			name:     "sibling prefix is not under",
			filter:   QueryFilter{AreaPath: `Project\Team`, MigratedTag: "migrated-to-github"},
			expected: false,
		},
		{
			name:     "already migrated",
			filter:   QueryFilter{AreaPath: `Project`, MigratedTag: "migrated-to-github"},
			mutate:   func(w *WorkItem) { w.Tags = []string{"Migrated-To-GitHub"} },
			expected: false,
		},
		{
			name:     "closed excluded by default",
			filter:   QueryFilter{AreaPath: `Project`},
			mutate:   func(w *WorkItem) { w.State = "Done" },
			expected: false,
		},
		{
			name:     "closed included when enabled",
			filter:   QueryFilter{AreaPath: `Project`, IncludeClosed: true},
			mutate:   func(w *WorkItem) { w.State = "Removed" },
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := base()
			if tt.mutate != nil {
				tt.mutate(item)
			}
			if got := tt.filter.Matches(item); got != tt.expected {
				t.Errorf("Matches() = %v, expected %v", got, tt.expected)
			}
		})
	}

	if (QueryFilter{}).Matches(nil) {
		t.Error("nil work item should never match")
	}
}

// TestMigrationMap tests append-only insertion
func TestMigrationMap(t *testing.T) {
	m := NewMigrationMap()
	if !m.Add(3, &Issue{Number: 1}) {
		t.Fatal("first insert should succeed")
	}
	if !m.Add(1, &Issue{Number: 2}) {
		t.Fatal("second insert should succeed")
	}
	if m.Add(3, &Issue{Number: 99}) {
		t.Error("duplicate insert should be rejected")
	}

	issue, ok := m.Get(3)
	if !ok || issue.Number != 1 {
		t.Errorf("Get(3) = %v, %v; expected issue #1", issue, ok)
	}
	if _, ok := m.Get(42); ok {
		t.Error("Get(42) should miss")
	}
	if m.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", m.Len())
	}
}

// Package types contains common type definitions used across the application.
// This package centralizes the work item and issue data structures so the
// rendering, relation and migration packages share one typed model.
package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Work item types and states with special handling during migration.
const (
	WorkItemTypeBug = "Bug"

	StateDone     = "Done"
	StateClosed   = "Closed"
	StateResolved = "Resolved"
	StateRemoved  = "Removed"
)

// ClosedStates lists the work item states treated as finished.
var ClosedStates = []string{StateDone, StateClosed, StateResolved, StateRemoved}

// WorkItem is a single Azure DevOps work item, mapped from the raw API payload
// into typed fields at the client boundary.
type WorkItem struct {
	ID                 int        `json:"id"`
	URL                string     `json:"url,omitempty"`
	Type               string     `json:"type"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	State              string     `json:"state"`
	AreaPath           string     `json:"area_path"`
	IterationPath      string     `json:"iteration_path"`
	CreatedDate        string     `json:"created_date"`
	CreatedBy          string     `json:"created_by"`
	ChangedDate        string     `json:"changed_date"`
	ChangedBy          string     `json:"changed_by"`
	AssignedTo         string     `json:"assigned_to,omitempty"`
	AcceptanceCriteria string     `json:"acceptance_criteria,omitempty"`
	ReproSteps         string     `json:"repro_steps,omitempty"`
	SystemInfo         string     `json:"system_info,omitempty"`
	CommentCount       int        `json:"comment_count"`
	Tags               []string   `json:"tags,omitempty"`
	Relations          []Relation `json:"relations,omitempty"`

	// Raw holds the untouched source payload for the audit dump.
	Raw json.RawMessage `json:"-"`
}

// IsClosed reports whether the work item is in one of the ClosedStates.
func (w *WorkItem) IsClosed() bool {
	for _, s := range ClosedStates {
		if w.State == s {
			return true
		}
	}
	return false
}

// HasTag reports whether the work item carries the given tag (case-insensitive,
// matching how Azure DevOps compares tags).
func (w *WorkItem) HasTag(tag string) bool {
	for _, t := range w.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Relation is one entry of a work item's relation list. Attributes carries the
// edge kind under the "name" key (Child, Related, Predecessor, ...).
type Relation struct {
	Rel        string                 `json:"rel"`
	URL        string                 `json:"url"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Name returns the relation kind stored in the "name" attribute, or "".
func (r Relation) Name() string {
	if r.Attributes == nil {
		return ""
	}
	name, _ := r.Attributes["name"].(string)
	return name
}

// WorkItemRef is the lightweight reference returned by a work item query.
type WorkItemRef struct {
	ID  int    `json:"id"`
	URL string `json:"url,omitempty"`
}

// Comment is a discussion comment on a work item.
type Comment struct {
	CreatedDate time.Time `json:"created_date"`
	CreatedBy   string    `json:"created_by"`
	URL         string    `json:"url"`
	Text        string    `json:"text,omitempty"`
}

// CommentList is the result of a comment fetch together with the total count
// reported by the service.
type CommentList struct {
	Comments   []Comment `json:"comments"`
	TotalCount int       `json:"total_count"`
}

// Issue represents a GitHub issue created from a work item.
type Issue struct {
	NodeID string   `json:"node_id,omitempty"` // GitHub node ID for deletion operations
	Number int      `json:"number,omitempty"`  // Issue number for identification
	URL    string   `json:"html_url,omitempty"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// IssueInput holds the fields used to create an issue.
type IssueInput struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

package types

// MigrationMap maps a work item id to the issue created for it. It is
// append-only and owned by a single driver; concurrent readers are safe only
// once population has finished.
type MigrationMap struct {
	issues map[int]*Issue
}

// NewMigrationMap creates an empty map.
func NewMigrationMap() *MigrationMap {
	return &MigrationMap{issues: make(map[int]*Issue)}
}

// Add records the issue for a work item id. It returns false and leaves the
// map untouched when the id is already present.
func (m *MigrationMap) Add(workItemID int, issue *Issue) bool {
	if _, exists := m.issues[workItemID]; exists {
		return false
	}
	m.issues[workItemID] = issue
	return true
}

// Get returns the issue migrated from the given work item id.
func (m *MigrationMap) Get(workItemID int) (*Issue, bool) {
	issue, ok := m.issues[workItemID]
	return issue, ok
}

// Len returns the number of entries.
func (m *MigrationMap) Len() int {
	return len(m.issues)
}

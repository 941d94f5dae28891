package model

// Status and priority values the backend currently uses. Both sets are open:
// anything else the server sends is kept and rendered as-is.
const (
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// WorkItem is a task/finance entry as the backend returns it.
// ID and the timestamps are assigned by the server.
type WorkItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// NewWorkItem is the create payload: a WorkItem without server-owned fields.
type NewWorkItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// WorkItemPatch is the update payload. Nil fields are left out of the body;
// the server decides what an omitted field means.
type WorkItemPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// Empty reports whether the patch carries no field at all.
func (p WorkItemPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil
}

// Apply copies the set fields of p onto it. Used by the stub backend only;
// the client never merges locally.
func (p WorkItemPatch) Apply(it *WorkItem) {
	if p.Title != nil {
		it.Title = *p.Title
	}
	if p.Description != nil {
		it.Description = *p.Description
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Priority != nil {
		it.Priority = *p.Priority
	}
}

// StringPtr is a small helper for building patches.
func StringPtr(s string) *string { return &s }

package model

import "time"

// Request is a staff-initiated ask for a quantity of an item.
type Request struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	ItemID     string    `json:"item_id"`
	Quantity   int       `json:"quantity"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	AdminNotes string    `json:"admin_notes,omitempty"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Request statuses.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestFulfilled = "fulfilled"
)

// DefaultRequestDepartment is the department snapshot used when the
// requester has none.
const DefaultRequestDepartment = "General"

// RequestFilter narrows request listings.
type RequestFilter struct {
	UserID string
	ItemID string
	Status string
	Since  time.Time
	Until  time.Time
}

// CanTransition reports whether a request may move from one status to another.
func CanTransition(from, to string) bool {
	switch from {
	case RequestPending:
		return to == RequestApproved || to == RequestRejected
	case RequestApproved:
		return to == RequestFulfilled
	}
	return false
}

package model

import "time"

// Movement is an immutable log entry recording a change of custody or
// condition for one unit of an item.
type Movement struct {
	ID           string      `json:"id"`
	ItemID       string      `json:"item_id"`
	UserID       string      `json:"user_id"`
	Kind         string      `json:"movement_type"`
	DisplayType  DisplayType `json:"display_type,omitempty"`
	Quantity     int         `json:"quantity"`
	Reason       string      `json:"reason"`
	FromLocation string      `json:"from_location,omitempty"`
	ToLocation   string      `json:"to_location,omitempty"`
	AssignedTo   *string     `json:"assigned_to,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
	UserName string `json:"user_name,omitempty"`
}

// Coarse movement kinds stored by the database.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// DisplayType is the fine-grained movement type shown to users.
type DisplayType string

// Display types.
const (
	DisplayIssue      DisplayType = "Issue"
	DisplayReturn     DisplayType = "Return"
	DisplayTransfer   DisplayType = "Transfer"
	DisplayLostStolen DisplayType = "Lost/Stolen"
	DisplayDamaged    DisplayType = "Damaged"
)

// Kind returns the coarse database kind recorded for a display type.
func (d DisplayType) Kind() string {
	switch d {
	case DisplayReturn:
		return MovementIn
	case DisplayTransfer:
		return MovementAdjustment
	default:
		return MovementOut
	}
}

// Valid reports whether d is one of the known display types.
func (d DisplayType) Valid() bool {
	switch d {
	case DisplayIssue, DisplayReturn, DisplayTransfer, DisplayLostStolen, DisplayDamaged:
		return true
	}
	return false
}

// IsWriteOff reports whether the movement removes the item from active stock.
func (d DisplayType) IsWriteOff() bool {
	return d == DisplayLostStolen || d == DisplayDamaged
}

// MovementFilter narrows movement listings at the store level.
type MovementFilter struct {
	ItemID string
	UserID string
	Kind   string
	Since  time.Time
	Until  time.Time
}

package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/model"
)

// MovementInput describes a movement to record.
type MovementInput struct {
	ItemID string            `json:"item_id"`
	Type   model.DisplayType `json:"type"`
	// Person is the name of the counterpart; PersonID optionally links a user.
	Person       string `json:"person"`
	PersonID     string `json:"person_id,omitempty"`
	FromLocation string `json:"from_location,omitempty"`
	ToLocation   string `json:"to_location,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
}

// Validate checks the required fields without touching the store.
func (in MovementInput) Validate() error {
	if strings.TrimSpace(in.ItemID) == "" {
		return model.Invalid("item_id", "select an item")
	}
	if in.Type == "" {
		return model.Invalid("type", "select a movement type")
	}
	if !in.Type.Valid() {
		return model.Invalid("type", fmt.Sprintf("unknown movement type %q", in.Type))
	}
	if strings.TrimSpace(in.Person) == "" {
		return model.Invalid("person", "enter the person involved")
	}
	if in.Type == model.DisplayTransfer && (strings.TrimSpace(in.FromLocation) == "" || strings.TrimSpace(in.ToLocation) == "") {
		return model.Invalid("to_location", "select both source and destination for a transfer")
	}
	return nil
}

// FormatReason renders the persisted reason: "[Type] Person: name. remarks",
// without the remarks part when they are blank.
func FormatReason(t model.DisplayType, person, remarks string) string {
	person = strings.TrimSpace(person)
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return fmt.Sprintf("[%s] Person: %s", t, person)
	}
	return fmt.Sprintf("[%s] Person: %s. %s", t, person, remarks)
}

// itemMutation returns the item change that follows a movement.
func itemMutation(in MovementInput) model.ItemPatch {
	var p model.ItemPatch
	switch in.Type {
	case model.DisplayIssue:
		p.Status = ptr(model.ItemStatusIssued)
		if in.PersonID != "" {
			p.AssignedTo = ptr(in.PersonID)
		}
	case model.DisplayReturn:
		p.Status = ptr(model.ItemStatusAvailable)
		p.AssignedTo = ptr("")
	case model.DisplayTransfer:
		p.Department = ptr(strings.TrimSpace(in.ToLocation))
		p.Status = ptr(model.ItemStatusTransferred)
	case model.DisplayLostStolen:
		p.Condition = ptr(model.ConditionLostStolen)
		p.Quantity = ptr(0)
	case model.DisplayDamaged:
		p.Condition = ptr(model.ConditionDamaged)
		p.Quantity = ptr(0)
	}
	return p
}

func successMessage(in MovementInput) string {
	switch in.Type {
	case model.DisplayIssue:
		return fmt.Sprintf("Item issued to %s.", strings.TrimSpace(in.Person))
	case model.DisplayReturn:
		return "Item returned and marked as available."
	case model.DisplayTransfer:
		return fmt.Sprintf("Item transferred to %s.", strings.TrimSpace(in.ToLocation))
	default:
		return fmt.Sprintf("Item marked as %q and removed from active inventory.", string(in.Type))
	}
}

// RecordMovement logs a movement and then applies the matching item
// mutation. The movement is written first; if the item update then fails
// the movement stands and the outcome carries a warning.
func (c *Controller) RecordMovement(ctx context.Context, actorID string, in MovementInput) (*Outcome, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	item, err := c.store.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}
	if item.Defective() {
		return nil, model.Invalid("item_id", "item is written off")
	}

	status := strings.ToLower(item.Status)
	switch in.Type {
	case model.DisplayIssue:
		if status == model.ItemStatusIssued {
			return nil, model.Invalid("item_id", "item is already issued")
		}
	case model.DisplayReturn:
		if status != model.ItemStatusIssued {
			return nil, model.Invalid("item_id", "item is not currently issued")
		}
	}

	var assignedTo *string
	if in.Type == model.DisplayIssue && in.PersonID != "" {
		if _, err := c.store.GetUser(ctx, in.PersonID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return nil, model.Invalid("person_id", "unknown user")
			}
			return nil, fmt.Errorf("loading person: %w", err)
		}
		assignedTo = ptr(in.PersonID)
	}

	mv, err := c.store.CreateMovement(ctx, model.Movement{
		ItemID:       item.ID,
		UserID:       actorID,
		Kind:         in.Type.Kind(),
		DisplayType:  in.Type,
		Quantity:     1,
		Reason:       FormatReason(in.Type, in.Person, in.Remarks),
		FromLocation: strings.TrimSpace(in.FromLocation),
		ToLocation:   strings.TrimSpace(in.ToLocation),
		AssignedTo:   assignedTo,
	})
	if err != nil {
		c.metrics.Movement(string(in.Type), "error")
		return nil, fmt.Errorf("recording movement: %w", err)
	}

	out := &Outcome{Movement: mv}
	updated, err := c.store.UpdateItem(ctx, item.ID, itemMutation(in))
	if err != nil {
		log.Warn().Err(err).Str("item", item.ID).Str("movement", mv.ID).Msg("movement recorded but item update failed")
		c.metrics.Movement(string(in.Type), "partial")
		out.Item = item
		out.Message = "Movement recorded."
		out.Warning = "Movement recorded but failed to update the item: " + err.Error()
		return out, nil
	}

	log.Info().Str("actor", actorID).Str("item", item.ID).Str("type", string(in.Type)).Msg("movement recorded")
	c.metrics.Movement(string(in.Type), "ok")
	out.Item = updated
	out.Message = successMessage(in)
	return out, nil
}

func ptr[T any](v T) *T {
	return &v
}

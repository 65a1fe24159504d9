package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/model"
)

// RequestInput is a staff request for stock.
type RequestInput struct {
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
	Department string `json:"department"`
}

// CreateRequest files a pending request on behalf of requester.
func (c *Controller) CreateRequest(ctx context.Context, requester *model.User, in RequestInput) (*model.Request, error) {
	if strings.TrimSpace(in.ItemID) == "" {
		return nil, model.Invalid("item_id", "select an item")
	}
	if in.Quantity <= 0 {
		return nil, model.Invalid("quantity", "quantity must be greater than zero")
	}

	item, err := c.store.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = "Request for " + item.Name
	}
	dept := strings.TrimSpace(in.Department)
	if dept == "" {
		dept = requester.Department
	}
	if dept == "" {
		dept = model.DefaultRequestDepartment
	}

	req, err := c.store.CreateRequest(ctx, model.Request{
		UserID:     requester.ID,
		ItemID:     item.ID,
		Quantity:   in.Quantity,
		Reason:     reason,
		Department: dept,
	})
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	log.Info().Str("actor", requester.ID).Str("request", req.ID).Str("item", item.ID).Msg("request created")
	return req, nil
}

// ApproveRequest moves a pending request to approved.
func (c *Controller) ApproveRequest(ctx context.Context, actorID, id, notes string) (*model.Request, error) {
	return c.transition(ctx, actorID, id, model.RequestApproved, strings.TrimSpace(notes))
}

// RejectRequest moves a pending request to rejected. Notes are required.
func (c *Controller) RejectRequest(ctx context.Context, actorID, id, notes string) (*model.Request, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, model.Invalid("admin_notes", "a reason is required to reject a request")
	}
	return c.transition(ctx, actorID, id, model.RequestRejected, notes)
}

func (c *Controller) transition(ctx context.Context, actorID, id, status, notes string) (*model.Request, error) {
	req, err := c.store.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}
	if !model.CanTransition(req.Status, status) {
		return nil, model.Invalid("status", fmt.Sprintf("request is %s and cannot become %s", req.Status, status))
	}

	if err := c.store.UpdateRequestStatus(ctx, id, status, notes); err != nil {
		return nil, fmt.Errorf("updating request: %w", err)
	}

	log.Info().Str("actor", actorID).Str("request", id).Str("status", status).Msg("request updated")
	req.Status = status
	req.AdminNotes = notes
	return req, nil
}

// FulfillRequest issues the stock of an approved request in one store
// procedure.
func (c *Controller) FulfillRequest(ctx context.Context, actorID, id string) (*model.Request, error) {
	req, err := c.store.GetRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading request: %w", err)
	}
	if req.Status != model.RequestApproved {
		return nil, model.Invalid("status", fmt.Sprintf("request is %s, only approved requests can be fulfilled", req.Status))
	}

	if err := c.store.FulfillRequest(ctx, id, actorID); err != nil {
		return nil, fmt.Errorf("fulfilling request: %w", err)
	}

	log.Info().Str("actor", actorID).Str("request", id).Msg("request fulfilled")
	req.Status = model.RequestFulfilled
	return req, nil
}

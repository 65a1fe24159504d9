package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/auth"
	"github.com/erazemk/kns/internal/model"
)

// UserInput is used for signup and for admin-created accounts.
type UserInput struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.FullName) == "" {
		return model.Invalid("full_name", "full name is required")
	}
	if !strings.Contains(in.Email, "@") {
		return model.Invalid("email", "a valid email is required")
	}
	if err := model.ValidatePassword(in.Password); err != nil {
		return model.Invalid("password", err.Error())
	}
	if in.Role != "" && !model.ValidRole(in.Role) {
		return model.Invalid("role", "role must be admin or staff")
	}
	return nil
}

// Signup registers a staff account awaiting approval.
func (c *Controller) Signup(ctx context.Context, in UserInput) (*model.User, error) {
	in.Role = model.RoleStaff
	return c.createUser(ctx, "", in, model.UserPending)
}

// CreateUser registers an account on behalf of an admin. It skips the
// approval step.
func (c *Controller) CreateUser(ctx context.Context, actorID string, in UserInput) (*model.User, error) {
	if in.Role == "" {
		in.Role = model.RoleStaff
	}
	return c.createUser(ctx, actorID, in, model.UserApproved)
}

func (c *Controller) createUser(ctx context.Context, actorID string, in UserInput, status string) (*model.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := c.store.CreateUser(ctx, model.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Department:   strings.TrimSpace(in.Department),
		Status:       status,
	})
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	log.Info().Str("actor", actorID).Str("user", u.ID).Str("status", status).Msg("user created")
	return u, nil
}

// ApproveUser grants a pending account access.
func (c *Controller) ApproveUser(ctx context.Context, actorID, id string) error {
	if err := c.store.ApproveUser(ctx, id); err != nil {
		return fmt.Errorf("approving user: %w", err)
	}
	log.Info().Str("actor", actorID).Str("user", id).Msg("user approved")
	return nil
}

// RejectUser denies a pending account access.
func (c *Controller) RejectUser(ctx context.Context, actorID, id string) error {
	if err := c.store.RejectUser(ctx, id); err != nil {
		return fmt.Errorf("rejecting user: %w", err)
	}
	log.Info().Str("actor", actorID).Str("user", id).Msg("user rejected")
	return nil
}

// SetRole changes the role of a user.
func (c *Controller) SetRole(ctx context.Context, actorID, id, role string) error {
	if !model.ValidRole(role) {
		return model.Invalid("role", "role must be admin or staff")
	}
	if id == actorID && role != model.RoleAdmin {
		return model.Invalid("role", "cannot demote yourself")
	}
	if err := c.store.UpdateUserRole(ctx, id, role); err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	log.Info().Str("actor", actorID).Str("user", id).Str("role", role).Msg("user role changed")
	return nil
}

// DeleteUser removes a user other than the actor.
func (c *Controller) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return model.Invalid("id", "cannot delete your own account")
	}
	if err := c.store.DeleteUser(ctx, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	log.Info().Str("actor", actorID).Str("user", id).Msg("user deleted")
	return nil
}

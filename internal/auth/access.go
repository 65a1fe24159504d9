package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/kns/internal/model"
)

// Decision is the outcome of an access check.
type Decision int

const (
	// Allow grants access.
	Allow Decision = iota
	// Pending blocks a user whose account awaits approval.
	Pending
	// Rejected blocks a user whose account was rejected.
	Rejected
	// Forbidden blocks a user whose role is too low.
	Forbidden
)

// Check decides whether u may use a resource that needs minRole. Admins are
// never held back by their approval status.
func Check(u *model.User, minRole string) Decision {
	if !model.CanAccess(u.Role, u.Status) {
		if u.Status == model.UserRejected {
			return Rejected
		}
		return Pending
	}
	if minRole != "" && !model.RoleAtLeast(u.Role, minRole) {
		return Forbidden
	}
	return Allow
}

// Message is the user-facing text for a refused decision.
func (d Decision) Message() string {
	switch d {
	case Pending:
		return "your account is awaiting administrator approval"
	case Rejected:
		return "your account has been rejected"
	case Forbidden:
		return "insufficient permissions"
	}
	return ""
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
)

const userSelect = `SELECT id, full_name, email, password_hash, role, department, status, avatar_url, created_at FROM users`

// CreateUser creates a new user. Emails are stored lower-cased.
func CreateUser(ctx context.Context, d *db.DB, u model.User) (*model.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = model.RoleStaff
	}
	if u.Status == "" {
		u.Status = model.UserPending
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	_, err := d.ExecContext(ctx, d.Rebind(
		`INSERT INTO users (id, full_name, email, password_hash, role, department, status, avatar_url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.FullName, u.Email, u.PasswordHash, u.Role, u.Department, u.Status, u.AvatarURL, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", classify(err))
	}

	return GetUser(ctx, d, u.ID)
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, d *db.DB, id string) (*model.User, error) {
	u, err := scanUser(d.QueryRowContext(ctx, d.Rebind(userSelect+` WHERE id = ?`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", classify(err))
	}
	return u, nil
}

// GetUserByEmail returns a user by email, case-insensitively.
func GetUserByEmail(ctx context.Context, d *db.DB, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := scanUser(d.QueryRowContext(ctx, d.Rebind(userSelect+` WHERE email = ?`), email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", classify(err))
	}
	return u, nil
}

// ListUsers returns all users, newest first.
func ListUsers(ctx context.Context, d *db.DB) ([]model.User, error) {
	rows, err := d.QueryContext(ctx, userSelect+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", classify(err))
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountAdmins returns the number of admin accounts.
func CountAdmins(ctx context.Context, d *db.DB) (int, error) {
	var n int
	err := d.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM users WHERE role = ?`), model.RoleAdmin).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", classify(err))
	}
	return n, nil
}

// UpdateUserRole changes a user's role.
func UpdateUserRole(ctx context.Context, d *db.DB, id, role string) error {
	return updateUser(ctx, d, id, "updating user role", `role = ?`, role)
}

// UpdateUserProfile changes a user's display name and department.
func UpdateUserProfile(ctx context.Context, d *db.DB, id, fullName, department string) error {
	return updateUser(ctx, d, id, "updating user profile", `full_name = ?, department = ?`, fullName, department)
}

// UpdateUserAvatar sets a user's avatar URL.
func UpdateUserAvatar(ctx context.Context, d *db.DB, id, avatarURL string) error {
	return updateUser(ctx, d, id, "updating user avatar", `avatar_url = ?`, avatarURL)
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, d *db.DB, id, passwordHash string) error {
	return updateUser(ctx, d, id, "updating user password", `password_hash = ?`, passwordHash)
}

func updateUser(ctx context.Context, d *db.DB, id, action, sets string, args ...any) error {
	args = append(args, id)
	result, err := d.ExecContext(ctx, d.Rebind(`UPDATE users SET `+sets+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("%s: %w", action, classify(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user. Their requests go with them; items and
// movements keep a cleared reference.
func DeleteUser(ctx context.Context, d *db.DB, id string) error {
	result, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", classify(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u                     model.User
		department, avatarURL sql.NullString
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.Role, &department,
		&u.Status, &avatarURL, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Department = department.String
	u.AvatarURL = avatarURL.String
	return &u, nil
}

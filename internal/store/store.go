package store

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/erazemk/kns/internal/blob"
	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/metrics"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/notify"
)

// Store binds the database, the change hub and object storage. Successful
// mutations publish a change event for their entity. Get methods return
// model.ErrNotFound for missing records.
type Store struct {
	DB      *db.DB
	Hub     *notify.Hub
	Blobs   blob.Storage
	Metrics *metrics.Metrics

	mu   sync.Mutex
	cols map[string]bool
}

// New creates a store. hub, blobs and m may be nil.
func New(d *db.DB, hub *notify.Hub, blobs blob.Storage, m *metrics.Metrics) *Store {
	return &Store{DB: d, Hub: hub, Blobs: blobs, Metrics: m}
}

func (s *Store) publish(entity, op, id string) {
	s.Metrics.Event(entity)
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(notify.Event{Entity: entity, Op: op, ID: id})
}

// Subscribe registers fn for changes of entity, or of every entity with
// notify.AllEntities.
func (s *Store) Subscribe(entity string, fn notify.Handler) *notify.Subscription {
	return s.Hub.Subscribe(entity, fn)
}

// Upload stores an object.
func (s *Store) Upload(ctx context.Context, bucket, path string, r io.Reader, contentType string) error {
	if s.Blobs == nil {
		return fmt.Errorf("uploading %s/%s: no object storage configured", bucket, path)
	}
	return s.Blobs.Upload(ctx, bucket, path, r, contentType)
}

// PublicURL returns the URL an uploaded object is served from.
func (s *Store) PublicURL(bucket, path string) string {
	if s.Blobs == nil {
		return ""
	}
	return s.Blobs.PublicURL(bucket, path)
}

func found[T any](v *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, model.ErrNotFound
	}
	return v, nil
}

// ItemColumns probes the item table once and caches the result.
func (s *Store) ItemColumns(ctx context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cols != nil {
		return s.cols, nil
	}
	cols, err := ItemColumns(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	s.cols = cols
	return cols, nil
}

// ResetColumns forgets the probed item columns, for example after a migration.
func (s *Store) ResetColumns() {
	s.mu.Lock()
	s.cols = nil
	s.mu.Unlock()
	s.DB.ResetColumns()
}

// GetItem returns an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return found(GetItem(ctx, s.DB, id))
}

// ListItems returns the items matching f.
func (s *Store) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error) {
	return ListItems(ctx, s.DB, f)
}

// LowStockItems returns items at or below their reorder threshold.
func (s *Store) LowStockItems(ctx context.Context) ([]model.Item, error) {
	return LowStockItems(ctx, s.DB)
}

// CreateItem inserts an item and publishes the insert.
func (s *Store) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	created, err := CreateItem(ctx, s.DB, item)
	if err != nil {
		return nil, err
	}
	s.publish(model.EntityItems, notify.OpInsert, created.ID)
	return created, nil
}

// UpdateItem applies p to an item and returns the updated record.
func (s *Store) UpdateItem(ctx context.Context, id string, p model.ItemPatch) (*model.Item, error) {
	item, err := UpdateItem(ctx, s.DB, id, p)
	if err != nil {
		return nil, err
	}
	s.publish(model.EntityItems, notify.OpUpdate, id)
	return item, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := DeleteItem(ctx, s.DB, id); err != nil {
		return err
	}
	s.publish(model.EntityItems, notify.OpDelete, id)
	return nil
}

// GenerateItemID returns the next item ID for category.
func (s *Store) GenerateItemID(ctx context.Context, category string) (string, error) {
	return GenerateItemID(ctx, s.DB, category)
}

// AdjustQuantity changes an item quantity by delta.
func (s *Store) AdjustQuantity(ctx context.Context, itemID string, delta int, assignedTo *string) error {
	if err := AdjustQuantity(ctx, s.DB, itemID, delta, assignedTo); err != nil {
		return err
	}
	s.publish(model.EntityItems, notify.OpUpdate, itemID)
	return nil
}

// CreateMovement appends a movement to the log.
func (s *Store) CreateMovement(ctx context.Context, m model.Movement) (*model.Movement, error) {
	created, err := CreateMovement(ctx, s.DB, m)
	if err != nil {
		return nil, err
	}
	s.publish(model.EntityMovements, notify.OpInsert, created.ID)
	return created, nil
}

// GetMovement returns a movement by ID.
func (s *Store) GetMovement(ctx context.Context, id string) (*model.Movement, error) {
	return found(GetMovement(ctx, s.DB, id))
}

// ListMovements returns the movements matching f, newest first.
func (s *Store) ListMovements(ctx context.Context, f model.MovementFilter) ([]model.Movement, error) {
	return ListMovements(ctx, s.DB, f)
}

// ClearMovements deletes the whole movement log and returns the number of rows removed.
func (s *Store) ClearMovements(ctx context.Context) (int64, error) {
	n, err := ClearMovements(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	s.publish(model.EntityMovements, notify.OpDelete, "")
	return n, nil
}

// GetRequest returns a request by ID.
func (s *Store) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return found(GetRequest(ctx, s.DB, id))
}

// ListRequests returns the requests matching f.
func (s *Store) ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error) {
	return ListRequests(ctx, s.DB, f)
}

// CreateRequest inserts a pending request.
func (s *Store) CreateRequest(ctx context.Context, r model.Request) (*model.Request, error) {
	created, err := CreateRequest(ctx, s.DB, r)
	if err != nil {
		return nil, err
	}
	s.publish(model.EntityRequests, notify.OpInsert, created.ID)
	return created, nil
}

// UpdateRequestStatus sets the status and admin notes of a request.
func (s *Store) UpdateRequestStatus(ctx context.Context, id, status, notes string) error {
	if err := UpdateRequestStatus(ctx, s.DB, id, status, notes); err != nil {
		return err
	}
	s.publish(model.EntityRequests, notify.OpUpdate, id)
	return nil
}

// FulfillRequest runs the fulfilment procedure. It changes a request, an
// item and the movement log, so all three entities are notified.
func (s *Store) FulfillRequest(ctx context.Context, id, actorID string) error {
	if err := FulfillRequest(ctx, s.DB, id, actorID); err != nil {
		return err
	}
	s.publish(model.EntityRequests, notify.OpUpdate, id)
	s.publish(model.EntityItems, notify.OpUpdate, "")
	s.publish(model.EntityMovements, notify.OpInsert, "")
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return found(GetUser(ctx, s.DB, id))
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return found(GetUserByEmail(ctx, s.DB, email))
}

// ListUsers returns all users.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	return ListUsers(ctx, s.DB)
}

// CreateUser inserts a user.
func (s *Store) CreateUser(ctx context.Context, u model.User) (*model.User, error) {
	created, err := CreateUser(ctx, s.DB, u)
	if err != nil {
		return nil, err
	}
	s.publish(model.EntityUsers, notify.OpInsert, created.ID)
	return created, nil
}

// UpdateUserRole changes the role of a user.
func (s *Store) UpdateUserRole(ctx context.Context, id, role string) error {
	return s.userChanged(id, UpdateUserRole(ctx, s.DB, id, role))
}

// UpdateUserProfile changes the name and department of a user.
func (s *Store) UpdateUserProfile(ctx context.Context, id, fullName, department string) error {
	return s.userChanged(id, UpdateUserProfile(ctx, s.DB, id, fullName, department))
}

// UpdateUserAvatar sets the avatar URL of a user.
func (s *Store) UpdateUserAvatar(ctx context.Context, id, avatarURL string) error {
	return s.userChanged(id, UpdateUserAvatar(ctx, s.DB, id, avatarURL))
}

// UpdateUserPassword stores a new password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return s.userChanged(id, UpdateUserPassword(ctx, s.DB, id, passwordHash))
}

// ApproveUser marks a pending user approved.
func (s *Store) ApproveUser(ctx context.Context, id string) error {
	return s.userChanged(id, ApproveUser(ctx, s.DB, id))
}

// RejectUser marks a user rejected.
func (s *Store) RejectUser(ctx context.Context, id string) error {
	return s.userChanged(id, RejectUser(ctx, s.DB, id))
}

func (s *Store) userChanged(id string, err error) error {
	if err != nil {
		return err
	}
	s.publish(model.EntityUsers, notify.OpUpdate, id)
	return nil
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if err := DeleteUser(ctx, s.DB, id); err != nil {
		return err
	}
	s.publish(model.EntityUsers, notify.OpDelete, id)
	return nil
}

// CountAdmins returns the number of admin accounts.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	return CountAdmins(ctx, s.DB)
}

// DistinctValues returns the sorted distinct values of field in entity.
func (s *Store) DistinctValues(ctx context.Context, entity, field string) ([]string, error) {
	return DistinctValues(ctx, s.DB, entity, field)
}

// Departments returns the known department names.
func (s *Store) Departments(ctx context.Context) ([]string, error) {
	return Departments(ctx, s.DB)
}

// JWTSecret returns the signing secret, creating one on first use.
func (s *Store) JWTSecret(ctx context.Context) (string, error) {
	return GetJWTSecret(ctx, s.DB)
}

// RevokeToken records a token ID as revoked until expiresAt.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	return RevokeToken(ctx, s.DB, jti, expiresAt)
}

// IsTokenRevoked reports whether a token ID has been revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return IsTokenRevoked(ctx, s.DB, jti)
}

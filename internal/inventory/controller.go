// Package inventory validates business actions on the inventory and issues
// the resulting mutations, in a fixed order, through a DataStore.
package inventory

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/kns/internal/metrics"
	"github.com/erazemk/kns/internal/model"
)

// DataStore is the record store the controller mutates. Get methods return
// model.ErrNotFound for missing records.
type DataStore interface {
	GetItem(ctx context.Context, id string) (*model.Item, error)
	CreateItem(ctx context.Context, item model.Item) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, p model.ItemPatch) (*model.Item, error)
	DeleteItem(ctx context.Context, id string) error
	ItemColumns(ctx context.Context) (map[string]bool, error)
	GenerateItemID(ctx context.Context, category string) (string, error)

	CreateMovement(ctx context.Context, m model.Movement) (*model.Movement, error)

	GetRequest(ctx context.Context, id string) (*model.Request, error)
	CreateRequest(ctx context.Context, r model.Request) (*model.Request, error)
	UpdateRequestStatus(ctx context.Context, id, status, notes string) error
	FulfillRequest(ctx context.Context, id, actorID string) error

	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	UpdateUserRole(ctx context.Context, id, role string) error
	DeleteUser(ctx context.Context, id string) error
	ApproveUser(ctx context.Context, id string) error
	RejectUser(ctx context.Context, id string) error
}

// Controller applies inventory actions.
type Controller struct {
	store   DataStore
	metrics *metrics.Metrics

	mu   sync.Mutex
	cols map[string]bool
}

// New creates a controller over store. m may be nil.
func New(store DataStore, m *metrics.Metrics) *Controller {
	return &Controller{store: store, metrics: m}
}

// itemColumns returns the probed item column set, or nil if the probe
// failed. The result of a successful probe is kept for the controller's
// lifetime.
func (c *Controller) itemColumns(ctx context.Context) map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cols != nil {
		return c.cols
	}
	cols, err := c.store.ItemColumns(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("probing item columns, relying on insert retry")
		return nil
	}
	c.cols = cols
	return cols
}

// forgetColumns drops the probed column set so the next insert probes again.
func (c *Controller) forgetColumns() {
	c.mu.Lock()
	c.cols = nil
	c.mu.Unlock()
}

// Outcome reports the result of an action that may partially succeed.
type Outcome struct {
	Message  string          `json:"message"`
	Warning  string          `json:"warning,omitempty"`
	Movement *model.Movement `json:"movement,omitempty"`
	Item     *model.Item     `json:"item,omitempty"`
	Request  *model.Request  `json:"request,omitempty"`
}

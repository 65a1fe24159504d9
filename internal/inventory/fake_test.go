package inventory

import (
	"context"
	"fmt"
	"sync"

	"github.com/erazemk/kns/internal/model"
)

// fakeStore is an in-memory DataStore that records the order of calls.
type fakeStore struct {
	mu sync.Mutex

	items     map[string]*model.Item
	movements []model.Movement
	requests  map[string]*model.Request
	users     map[string]*model.User
	cols      map[string]bool
	seq       int
	calls     []string
	// attempted and created hold item names in insert order.
	attempted []string
	created   []string

	createItemErrs   []error
	updateItemErr    error
	createMoveErr    error
	deleteItemErr    map[string]error
	generateIDErr    error
	fixedID          string
	fulfillCalls     int
	requestStatusErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    map[string]*model.Item{},
		requests: map[string]*model.Request{},
		users:    map[string]*model.User{},
		cols: map[string]bool{
			model.ColumnBrand: true, model.ColumnType: true, model.ColumnSupplier: true,
		},
		deleteItemErr: map[string]error{},
	}
}

func (f *fakeStore) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeStore) GetItem(_ context.Context, id string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetItem")
	it, ok := f.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) CreateItem(_ context.Context, item model.Item) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateItem")
	f.attempted = append(f.attempted, item.Name)
	if len(f.createItemErrs) > 0 {
		err := f.createItemErrs[0]
		f.createItemErrs = f.createItemErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	if !f.cols[model.ColumnBrand] && item.Brand != "" {
		return nil, fmt.Errorf("%w: no column brand", model.ErrSchemaMismatch)
	}
	if _, ok := f.items[item.ID]; ok {
		return nil, fmt.Errorf("%w: %s", model.ErrConflict, item.ID)
	}
	cp := item
	f.items[item.ID] = &cp
	f.created = append(f.created, item.Name)
	return &cp, nil
}

func (f *fakeStore) UpdateItem(_ context.Context, id string, p model.ItemPatch) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateItem")
	if f.updateItemErr != nil {
		return nil, f.updateItemErr
	}
	it, ok := f.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if p.Name != nil {
		it.Name = *p.Name
	}
	if p.Category != nil {
		it.Category = *p.Category
	}
	if p.Department != nil {
		it.Department = *p.Department
	}
	if p.Quantity != nil {
		it.Quantity = *p.Quantity
	}
	if p.Condition != nil {
		it.Condition = *p.Condition
	}
	if p.Status != nil {
		it.Status = *p.Status
	}
	if p.Brand != nil {
		it.Brand = *p.Brand
	}
	if p.ImageURL != nil {
		it.ImageURL = *p.ImageURL
	}
	if p.AssignedTo != nil {
		if *p.AssignedTo == "" {
			it.AssignedTo = nil
		} else {
			v := *p.AssignedTo
			it.AssignedTo = &v
		}
	}
	cp := *it
	return &cp, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteItem")
	if err := f.deleteItemErr[id]; err != nil {
		return err
	}
	if _, ok := f.items[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) ItemColumns(context.Context) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ItemColumns")
	return f.cols, nil
}

func (f *fakeStore) GenerateItemID(_ context.Context, category string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GenerateItemID")
	if f.generateIDErr != nil {
		return "", f.generateIDErr
	}
	if f.fixedID != "" {
		id := f.fixedID
		f.fixedID = ""
		return id, nil
	}
	f.seq++
	return fmt.Sprintf("%s-%04d", category, f.seq), nil
}

func (f *fakeStore) CreateMovement(_ context.Context, m model.Movement) (*model.Movement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateMovement")
	if f.createMoveErr != nil {
		return nil, f.createMoveErr
	}
	m.ID = fmt.Sprintf("mv-%d", len(f.movements)+1)
	f.movements = append(f.movements, m)
	return &m, nil
}

func (f *fakeStore) GetRequest(_ context.Context, id string) (*model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRequest")
	r, ok := f.requests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) CreateRequest(_ context.Context, r model.Request) (*model.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateRequest")
	r.ID = fmt.Sprintf("req-%d", len(f.requests)+1)
	r.Status = model.RequestPending
	f.requests[r.ID] = &r
	cp := r
	return &cp, nil
}

func (f *fakeStore) UpdateRequestStatus(_ context.Context, id, status, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateRequestStatus")
	if f.requestStatusErr != nil {
		return f.requestStatusErr
	}
	r, ok := f.requests[id]
	if !ok {
		return model.ErrNotFound
	}
	r.Status = status
	r.AdminNotes = notes
	return nil
}

func (f *fakeStore) FulfillRequest(_ context.Context, id, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FulfillRequest")
	f.fulfillCalls++
	r, ok := f.requests[id]
	if !ok {
		return model.ErrNotFound
	}
	it, ok := f.items[r.ItemID]
	if !ok {
		return model.ErrNotFound
	}
	if it.Quantity < r.Quantity {
		return model.Invalid("quantity", "insufficient stock")
	}
	it.Quantity -= r.Quantity
	r.Status = model.RequestFulfilled
	return nil
}

func (f *fakeStore) GetUser(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetUser")
	u, ok := f.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u model.User) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateUser")
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: email", model.ErrConflict)
		}
	}
	u.ID = fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[u.ID] = &u
	cp := u
	return &cp, nil
}

func (f *fakeStore) UpdateUserRole(_ context.Context, id, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateUserRole")
	u, ok := f.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeStore) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteUser")
	if _, ok := f.users[id]; !ok {
		return model.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeStore) setUserStatus(id, status string) error {
	u, ok := f.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeStore) ApproveUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ApproveUser")
	return f.setUserStatus(id, model.UserApproved)
}

func (f *fakeStore) RejectUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RejectUser")
	return f.setUserStatus(id, model.UserRejected)
}

// mutations returns the recorded calls that write.
func (f *fakeStore) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		switch c {
		case "GetItem", "GetRequest", "GetUser", "ItemColumns", "GenerateItemID":
			continue
		}
		out = append(out, c)
	}
	return out
}

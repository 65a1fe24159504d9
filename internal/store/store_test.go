package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/notify"
)

func createTestUser(t *testing.T, d *db.DB, email, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), d, model.User{
		FullName: "User " + email, Email: email, PasswordHash: "x", Role: role, Department: "IT",
	})
	require.NoError(t, err)
	return u
}

func createTestItem(t *testing.T, d *db.DB, id string, qty int) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), d, model.Item{
		ID: id, Name: "Item " + id, Category: "Laptops", Department: "IT", Quantity: qty,
	})
	require.NoError(t, err)
	return item
}

func TestItemCRUD(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, d, model.Item{
		ID: "LAP-0001", Name: "Dell XPS", Category: "Laptops", Department: "IT",
		UnitPrice: decimal.RequireFromString("1299.90"), Quantity: 1, Brand: "Dell",
	})
	require.NoError(t, err)
	assert.Equal(t, "pcs", item.Unit)
	assert.Equal(t, model.DefaultMinStockLevel, item.MinStockLevel)
	assert.Equal(t, model.ItemStatusAvailable, item.Status)
	assert.Equal(t, model.ConditionGood, item.Condition)
	assert.Equal(t, "Dell", item.Brand)
	assert.True(t, decimal.RequireFromString("1299.9").Equal(item.UnitPrice))

	dept := "Finance"
	updated, err := UpdateItem(ctx, d, "LAP-0001", model.ItemPatch{Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Finance", updated.Department)

	var location string
	require.NoError(t, d.QueryRow(`SELECT location FROM inventory_items WHERE id = 'LAP-0001'`).Scan(&location))
	assert.Equal(t, "Finance", location)

	_, err = UpdateItem(ctx, d, "missing", model.ItemPatch{Department: &dept})
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, DeleteItem(ctx, d, "LAP-0001"))
	got, err := GetItem(ctx, d, "LAP-0001")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, DeleteItem(ctx, d, "LAP-0001"), model.ErrNotFound)
}

func TestItemLocationAlias(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	_, err := d.Exec(`INSERT INTO inventory_items (id, item_name, category, location) VALUES ('OLD-1', 'Old', 'Misc', 'Storage')`)
	require.NoError(t, err)

	item, err := GetItem(ctx, d, "OLD-1")
	require.NoError(t, err)
	assert.Equal(t, "Storage", item.Department)

	values, err := DistinctValues(ctx, d, model.EntityItems, "department")
	require.NoError(t, err)
	assert.Equal(t, []string{"Storage"}, values)
}

func TestCreateItemDuplicateID(t *testing.T) {
	d := db.NewTestDB(t)
	createTestItem(t, d, "LAP-0001", 1)

	_, err := CreateItem(context.Background(), d, model.Item{ID: "LAP-0001", Name: "Again"})
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestLegacyItemTable(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	for _, col := range model.OptionalItemColumns {
		_, err := d.Exec(`ALTER TABLE inventory_items DROP COLUMN ` + col)
		require.NoError(t, err)
	}
	d.ResetColumns()

	cols, err := ItemColumns(ctx, d)
	require.NoError(t, err)
	assert.False(t, cols[model.ColumnBrand])
	assert.True(t, cols["item_name"])

	full := model.Item{ID: "LAP-0001", Name: "Dell", Category: "Laptops", Department: "IT", Quantity: 1, Brand: "Dell"}
	_, err = CreateItem(ctx, d, full)
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)

	item, err := CreateItem(ctx, d, full.Core())
	require.NoError(t, err)
	assert.Empty(t, item.Brand)

	items, err := ListItems(ctx, d, model.ItemFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestListItemsFilter(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	createTestItem(t, d, "LAP-0001", 1)
	_, err := CreateItem(ctx, d, model.Item{ID: "FUR-0001", Name: "Chair", Category: "Furniture", Quantity: 3})
	require.NoError(t, err)

	items, err := ListItems(ctx, d, model.ItemFilter{Category: "Furniture"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "FUR-0001", items[0].ID)

	items, err = ListItems(ctx, d, model.ItemFilter{Search: "lap"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "LAP-0001", items[0].ID)
}

func TestLowStockItems(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	createTestItem(t, d, "A", 2)
	createTestItem(t, d, "B", 10)
	createTestItem(t, d, "C", 0)

	damaged := model.ConditionDamaged
	_, err := UpdateItem(ctx, d, "C", model.ItemPatch{Condition: &damaged})
	require.NoError(t, err)

	items, err := LowStockItems(ctx, d)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].ID)
}

func TestGenerateItemID(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	for _, want := range []string{"LAP-0001", "LAP-0002"} {
		id, err := GenerateItemID(ctx, d, "laptops")
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	id, err := GenerateItemID(ctx, d, "Furniture")
	require.NoError(t, err)
	assert.Equal(t, "FUR-0001", id)

	id, err = GenerateItemID(ctx, d, "")
	require.NoError(t, err)
	assert.Equal(t, "ITM-0001", id)
}

func TestIDPrefix(t *testing.T) {
	assert.Equal(t, "LAP", IDPrefix("Laptops"))
	assert.Equal(t, "ITE", IDPrefix("IT equipment"))
	assert.Equal(t, "AB", IDPrefix("a-b"))
	assert.Equal(t, "ITM", IDPrefix("123"))
}

func TestAdjustQuantity(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, d, "ana@example.com", model.RoleStaff)
	createTestItem(t, d, "A", 3)

	require.NoError(t, AdjustQuantity(ctx, d, "A", -2, &u.ID))
	item, err := GetItem(ctx, d, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	require.NotNil(t, item.AssignedTo)
	assert.Equal(t, u.ID, *item.AssignedTo)
	assert.Equal(t, u.FullName, item.AssignedName)

	err = AdjustQuantity(ctx, d, "A", -2, nil)
	assert.True(t, model.IsValidation(err))

	assert.ErrorIs(t, AdjustQuantity(ctx, d, "missing", 1, nil), model.ErrNotFound)
}

func TestMovements(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, d, "ana@example.com", model.RoleAdmin)
	createTestItem(t, d, "A", 1)

	mv, err := CreateMovement(ctx, d, model.Movement{
		ItemID: "A", UserID: u.ID, DisplayType: model.DisplayTransfer,
		Reason: "[Transfer] Person: Ana", FromLocation: "IT", ToLocation: "HR",
	})
	require.NoError(t, err)
	assert.Equal(t, model.MovementAdjustment, mv.Kind)
	assert.Equal(t, 1, mv.Quantity)
	assert.Equal(t, "Item A", mv.ItemName)
	assert.Equal(t, u.FullName, mv.UserName)

	_, err = CreateMovement(ctx, d, model.Movement{ItemID: "A", DisplayType: model.DisplayIssue})
	require.NoError(t, err)

	list, err := ListMovements(ctx, d, model.MovementFilter{Kind: model.MovementOut})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// Deleting an item keeps its history.
	require.NoError(t, DeleteItem(ctx, d, "A"))
	list, err = ListMovements(ctx, d, model.MovementFilter{ItemID: "A"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	n, err := ClearMovements(ctx, d)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestRequestTransitions(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	u := createTestUser(t, d, "ana@example.com", model.RoleStaff)
	createTestItem(t, d, "A", 5)

	_, err := CreateRequest(ctx, d, model.Request{UserID: u.ID, ItemID: "A"})
	assert.True(t, model.IsValidation(err))

	req, err := CreateRequest(ctx, d, model.Request{UserID: u.ID, ItemID: "A", Quantity: 2, Department: "IT"})
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "Item A", req.ItemName)

	err = UpdateRequestStatus(ctx, d, req.ID, model.RequestFulfilled, "")
	assert.True(t, model.IsValidation(err))

	require.NoError(t, UpdateRequestStatus(ctx, d, req.ID, model.RequestApproved, "ok"))
	assert.ErrorIs(t, UpdateRequestStatus(ctx, d, "missing", model.RequestApproved, ""), model.ErrNotFound)

	got, err := GetRequest(ctx, d, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)
	assert.Equal(t, "ok", got.AdminNotes)

	list, err := ListRequests(ctx, d, model.RequestFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFulfillRequest(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	admin := createTestUser(t, d, "admin@example.com", model.RoleAdmin)
	staff := createTestUser(t, d, "ana@example.com", model.RoleStaff)
	createTestItem(t, d, "A", 3)

	big, err := CreateRequest(ctx, d, model.Request{UserID: staff.ID, ItemID: "A", Quantity: 5})
	require.NoError(t, err)
	small, err := CreateRequest(ctx, d, model.Request{UserID: staff.ID, ItemID: "A", Quantity: 2})
	require.NoError(t, err)

	assert.True(t, model.IsValidation(FulfillRequest(ctx, d, small.ID, admin.ID)), "pending requests cannot be fulfilled")

	require.NoError(t, UpdateRequestStatus(ctx, d, big.ID, model.RequestApproved, ""))
	require.NoError(t, UpdateRequestStatus(ctx, d, small.ID, model.RequestApproved, ""))

	assert.True(t, model.IsValidation(FulfillRequest(ctx, d, big.ID, admin.ID)), "insufficient stock")

	require.NoError(t, FulfillRequest(ctx, d, small.ID, admin.ID))

	item, err := GetItem(ctx, d, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	got, err := GetRequest(ctx, d, small.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestFulfilled, got.Status)

	list, err := ListMovements(ctx, d, model.MovementFilter{ItemID: "A"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.DisplayIssue, list[0].DisplayType)
	assert.Equal(t, 2, list[0].Quantity)
	require.NotNil(t, list[0].AssignedTo)
	assert.Equal(t, staff.ID, *list[0].AssignedTo)

	got, err = GetRequest(ctx, d, big.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)
}

func TestUsers(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	u := createTestUser(t, d, "Ana@Example.com", "")
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Equal(t, model.RoleStaff, u.Role)
	assert.Equal(t, model.UserPending, u.Status)

	_, err := CreateUser(ctx, d, model.User{FullName: "Dup", Email: "ana@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrConflict)

	byEmail, err := GetUserByEmail(ctx, d, "ANA@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	require.NoError(t, ApproveUser(ctx, d, u.ID))
	require.NoError(t, UpdateUserRole(ctx, d, u.ID, model.RoleAdmin))
	require.NoError(t, UpdateUserProfile(ctx, d, u.ID, "Ana Novak", "HR"))
	require.NoError(t, UpdateUserAvatar(ctx, d, u.ID, "/api/blobs/avatars/x/avatar.jpg"))

	got, err := GetUser(ctx, d, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UserApproved, got.Status)
	assert.Equal(t, model.RoleAdmin, got.Role)
	assert.Equal(t, "Ana Novak", got.FullName)
	assert.Equal(t, "HR", got.Department)

	n, err := CountAdmins(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.ErrorIs(t, RejectUser(ctx, d, "missing"), model.ErrNotFound)
	require.NoError(t, DeleteUser(ctx, d, u.ID))
	assert.ErrorIs(t, DeleteUser(ctx, d, u.ID), model.ErrNotFound)
}

func TestDepartments(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()
	createTestUser(t, d, "ana@example.com", model.RoleStaff)
	_, err := CreateItem(ctx, d, model.Item{ID: "A", Name: "A", Category: "X", Department: "Finance"})
	require.NoError(t, err)

	depts, err := Departments(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, []string{"Finance", "IT"}, depts)

	_, err = DistinctValues(ctx, d, model.EntityItems, "password_hash")
	assert.True(t, model.IsValidation(err))
}

func TestJWTSecretIsStable(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, d)
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := GetJWTSecret(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRevokedTokens(t *testing.T) {
	d := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, d, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, d, "jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, RevokeToken(ctx, d, "jti-1", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, d, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestStorePublishesChanges(t *testing.T) {
	d := db.NewTestDB(t)
	hub := notify.NewHub()
	s := New(d, hub, nil, nil)
	ctx := context.Background()

	var events []notify.Event
	sub := s.Subscribe(notify.AllEntities, func(e notify.Event) { events = append(events, e) })
	defer sub.Unsubscribe()

	_, err := s.CreateItem(ctx, model.Item{ID: "A", Name: "A", Category: "X", Quantity: 1})
	require.NoError(t, err)

	_, err = s.UpdateItem(ctx, "missing", model.ItemPatch{})
	require.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.DeleteItem(ctx, "A"))

	require.Len(t, events, 2)
	assert.Equal(t, model.EntityItems, events[0].Entity)
	assert.Equal(t, notify.OpInsert, events[0].Op)
	assert.Equal(t, "A", events[0].ID)
	assert.Equal(t, notify.OpDelete, events[1].Op)
	assert.False(t, events[1].At.IsZero())
}

func TestStoreGetMissingIsNotFound(t *testing.T) {
	s := New(db.NewTestDB(t), notify.NewHub(), nil, nil)
	ctx := context.Background()

	_, err := s.GetItem(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetRequest(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetUser(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetUserByEmail(ctx, "nope@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStoreItemColumnsCached(t *testing.T) {
	d := db.NewTestDB(t)
	s := New(d, nil, nil, nil)
	ctx := context.Background()

	cols, err := s.ItemColumns(ctx)
	require.NoError(t, err)
	assert.True(t, cols[model.ColumnBrand])

	_, err = d.Exec(`ALTER TABLE inventory_items DROP COLUMN brand`)
	require.NoError(t, err)

	cols, err = s.ItemColumns(ctx)
	require.NoError(t, err)
	assert.True(t, cols[model.ColumnBrand])

	s.ResetColumns()
	cols, err = s.ItemColumns(ctx)
	require.NoError(t, err)
	assert.False(t, cols[model.ColumnBrand])
}

package service

import (
	"testing"
	"time"

	"github.com/allblack/allblack-panel/database"
	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	customer, other, employee, admin entity.Identity
	burger, soda                     *model.MenuItem
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	admin, err := (&UserService{}).GetFirstAdmin()
	require.NoError(t, err)
	return orderFixture{
		customer: identity(createUser(t, "12", "", model.RoleCustomer)),
		other:    identity(createUser(t, "13", "", model.RoleCustomer)),
		employee: identity(createUser(t, "maria", "cozinha1", model.RoleEmployee)),
		admin:    identity(admin),
		burger:   createMenuItem(t, "X-Burger", "10.00", "hamburguer"),
		soda:     createMenuItem(t, "Refrigerante", "5.00", "bebidas"),
	}
}

func (f orderFixture) place(t *testing.T, s *OrderService) *model.Order {
	t.Helper()
	order, err := s.CreateOrder(f.customer, &entity.OrderForm{
		Items: []entity.LineItem{
			{MenuItemId: f.burger.Id, Quantity: 2},
			{MenuItemId: f.soda.Id, Quantity: 1},
		},
		PaymentMethod: model.PaymentPix,
		Observations:  "sem cebola",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}

	order := f.place(t, &service)
	assert.True(t, decimal.RequireFromString("25.00").Equal(order.Total), "total %s", order.Total)
	assert.Equal(t, model.StatusPending, order.Status)
	assert.Equal(t, 12, order.TableNumber)
	assert.Len(t, order.Number, 3)
	assert.Len(t, order.Items, 2)
	assert.False(t, order.Hidden)

	// the price is a snapshot; later menu changes do not touch the order
	_, err := (&MenuService{}).UpsertItem(&entity.MenuItemForm{Id: f.burger.Id, Name: "X-Burger", Price: "99"})
	require.NoError(t, err)
	reloaded, err := service.GetOrder(order.Id, f.customer)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("25").Equal(reloaded.Total))

	history, err := service.History(order.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.StatusPending, history[0].NewStatus)
}

func TestCreateOrderMergesLines(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}

	order, err := service.CreateOrder(f.customer, &entity.OrderForm{Items: []entity.LineItem{
		{MenuItemId: f.soda.Id, Quantity: 1},
		{MenuItemId: f.soda.Id, Quantity: 2},
	}})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("15").Equal(order.Total))
}

func TestCreateOrderValidation(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	require.NoError(t, (&MenuService{}).SetActive(f.soda.Id, false))

	cases := map[string]*entity.OrderForm{
		"empty":      {},
		"zero qty":   {Items: []entity.LineItem{{MenuItemId: f.burger.Id, Quantity: 0}}},
		"unknown":    {Items: []entity.LineItem{{MenuItemId: 9999, Quantity: 1}}},
		"inactive":   {Items: []entity.LineItem{{MenuItemId: f.soda.Id, Quantity: 1}}},
		"bad method": {Items: []entity.LineItem{{MenuItemId: f.burger.Id, Quantity: 1}}, PaymentMethod: "cheque"},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := service.CreateOrder(f.customer, form)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	var count int64
	require.NoError(t, database.GetDB().Model(model.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateStatusLifecycle(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	order := f.place(t, &service)

	_, err := service.UpdateStatus(order.Id, model.StatusPreparing, f.customer)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = service.UpdateStatus(order.Id, model.StatusReady, f.employee)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	updated, err := service.UpdateStatus(order.Id, model.StatusPreparing, f.employee)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPreparing, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, f.employee.Id, *updated.AssignedTo)

	// the owner may only cancel a pending order
	_, err = service.UpdateStatus(order.Id, model.StatusCancelled, f.customer)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = service.UpdateStatus(order.Id, model.StatusReady, f.admin)
	require.NoError(t, err)
	completed, err := service.UpdateStatus(order.Id, model.StatusCompleted, f.employee)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, completed.Status)

	_, err = service.UpdateStatus(order.Id, model.StatusCancelled, f.admin)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = service.UpdateStatus(order.Id, "served", f.admin)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = service.UpdateStatus(9999, model.StatusPreparing, f.admin)
	assert.ErrorIs(t, err, ErrNotFound)

	history, err := service.History(order.Id)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, model.StatusReady, history[3].OldStatus)
	assert.Equal(t, model.StatusCompleted, history[3].NewStatus)
	assert.Equal(t, "maria", history[3].ChangedBy)
}

func TestCustomerCancelsOwnOrder(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	order := f.place(t, &service)

	_, err := service.UpdateStatus(order.Id, model.StatusCancelled, f.other)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := service.UpdateStatus(order.Id, model.StatusCancelled, f.customer)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.AssignedTo)
}

func TestUpdateStatusGuardsConcurrentChange(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	order := f.place(t, &service)

	// another writer moved the order first; the stale cancel must not win
	result := database.GetDB().Model(&model.Order{}).Where("id = ? AND status = ?", order.Id, model.StatusPending).
		Update("status", model.StatusPreparing)
	require.NoError(t, result.Error)
	require.EqualValues(t, 1, result.RowsAffected)

	_, err := service.UpdateStatus(order.Id, model.StatusCancelled, f.customer)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderVisibility(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	order := f.place(t, &service)

	_, err := service.GetOrder(order.Id, f.other)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = service.GetOrder(order.Id, f.employee)
	assert.NoError(t, err)

	mine, err := service.ListForCustomer(f.customer.Id)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []model.OrderStatus{model.StatusCancelled}, mine[0].Actions)
	theirs, err := service.ListForCustomer(f.other.Id)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	assert.ErrorIs(t, service.Hide(order.Id, f.customer), ErrForbidden)
	assert.ErrorIs(t, service.Hide(order.Id, f.employee), ErrInvalidTransition, "pending orders stay in the queue")
	assert.ErrorIs(t, service.Hide(9999, f.admin), ErrNotFound)
	groups, err := service.ListGroupedForStaff(f.employee)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []model.OrderStatus{model.StatusPreparing, model.StatusCancelled}, groups[0].Orders[0].Actions)
	seen, err := service.GetOrder(order.Id, f.customer)
	require.NoError(t, err)
	assert.Equal(t, []model.OrderStatus{model.StatusCancelled}, seen.Actions)

	_, err = service.UpdateStatus(order.Id, model.StatusPreparing, f.employee)
	require.NoError(t, err)
	assert.ErrorIs(t, service.Hide(order.Id, f.employee), ErrInvalidTransition)
	for _, next := range []model.OrderStatus{model.StatusReady, model.StatusCompleted} {
		_, err = service.UpdateStatus(order.Id, next, f.employee)
		require.NoError(t, err)
	}

	require.NoError(t, service.Hide(order.Id, f.employee))
	require.NoError(t, service.Hide(order.Id, f.admin), "hiding twice succeeds")

	_, err = service.GetOrder(order.Id, f.customer)
	assert.ErrorIs(t, err, ErrNotFound)
	mine, err = service.ListForCustomer(f.customer.Id)
	require.NoError(t, err)
	assert.Empty(t, mine)
	groups, err = service.ListGroupedForStaff(f.employee)
	require.NoError(t, err)
	assert.Empty(t, groups)

	// hiding does not change the status
	stored := &model.Order{}
	require.NoError(t, database.GetDB().First(stored, order.Id).Error)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	assert.True(t, stored.Hidden)
}

func TestOnlyCustomersPlaceOrders(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	form := &entity.OrderForm{Items: []entity.LineItem{{MenuItemId: f.burger.Id, Quantity: 1}}}

	for _, actor := range []entity.Identity{f.employee, f.admin} {
		order, err := service.CreateOrder(actor, form)
		assert.ErrorIs(t, err, ErrForbidden, actor.Username)
		assert.Nil(t, order)
	}
	var count int64
	database.GetDB().Model(model.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestPurgeAll(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}
	f.place(t, &service)
	f.place(t, &service)

	_, err := service.PurgeAll(false)
	assert.ErrorIs(t, err, ErrValidation)
	visible, err := service.ListVisible()
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	deleted, err := service.PurgeAll(true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var items, logs int64
	database.GetDB().Model(model.OrderItem{}).Count(&items)
	database.GetDB().Model(model.OrderStatusLog{}).Count(&logs)
	assert.Zero(t, items)
	assert.Zero(t, logs)

	// menu items are free to delete once no order references them
	assert.NoError(t, (&MenuService{}).DeleteItem(f.burger.Id))
}

func TestCleanupHidden(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}

	done := f.place(t, &service)
	_, err := service.UpdateStatus(done.Id, model.StatusCancelled, f.employee)
	require.NoError(t, err)
	require.NoError(t, service.Hide(done.Id, f.employee))

	open := f.place(t, &service)
	assert.ErrorIs(t, service.Hide(open.Id, f.employee), ErrInvalidTransition)

	deleted, err := service.CleanupHidden(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = service.CleanupHidden(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = service.History(done.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	kept, err := service.GetOrder(open.Id, f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, kept.Status)
	assert.False(t, kept.Hidden)
}

func TestStatsFor(t *testing.T) {
	setup(t)
	defer teardown()
	f := newOrderFixture(t)
	service := OrderService{}

	f.place(t, &service)
	cancelled := f.place(t, &service)
	_, err := service.UpdateStatus(cancelled.Id, model.StatusCancelled, f.customer)
	require.NoError(t, err)

	stats, err := service.StatsFor(time.Now(), time.Local)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OrderCount)
	assert.True(t, decimal.RequireFromString("25").Equal(stats.Revenue), "revenue %s", stats.Revenue)
	assert.Equal(t, 1, stats.ByStatus[model.StatusCancelled])
	require.NotEmpty(t, stats.TopItems)
	assert.Equal(t, "X-Burger", stats.TopItems[0].Name)
	assert.Equal(t, 2, stats.TopItems[0].Quantity)
}

func TestGroupOrders(t *testing.T) {
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	orders := []model.Order{
		{Id: 1, UserId: 1, User: &model.User{Username: "01"}, CreatedAt: base},
		{Id: 2, UserId: 2, CreatedAt: base.Add(time.Minute)},
		{Id: 3, UserId: 1, User: &model.User{Username: "01"}, CreatedAt: base.Add(2 * time.Minute)},
	}
	groups := GroupOrders(orders)
	require.Len(t, groups, 2)
	assert.Equal(t, "01", groups[0].Username)
	assert.Len(t, groups[0].Orders, 2)
	assert.Equal(t, base.Add(2*time.Minute), groups[0].Latest)
	assert.Equal(t, "#2", groups[1].Username)

	assert.Empty(t, GroupOrders(nil))
}

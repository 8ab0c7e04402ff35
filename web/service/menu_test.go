package service

import (
	"testing"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertItem(t *testing.T) {
	setup(t)
	defer teardown()
	menu := MenuService{}

	item, err := menu.UpsertItem(&entity.MenuItemForm{Name: " X-Bacon ", Price: "12,50"})
	require.NoError(t, err)
	assert.Equal(t, "X-Bacon", item.Name)
	assert.True(t, decimal.RequireFromString("12.50").Equal(item.Price))
	assert.Equal(t, model.DefaultCategory, item.Category)
	assert.True(t, item.Active)

	inactive := false
	updated, err := menu.UpsertItem(&entity.MenuItemForm{
		Id:          item.Id,
		Name:        "X-Bacon",
		Price:       "13",
		Category:    "hamburguer",
		NewCategory: "especiais",
		Active:      &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, item.Id, updated.Id)
	assert.Equal(t, "especiais", updated.Category)
	assert.False(t, updated.Active)

	_, err = menu.UpsertItem(&entity.MenuItemForm{Name: "Suco", Price: "-1"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = menu.UpsertItem(&entity.MenuItemForm{Name: "Suco", Price: "abc"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = menu.UpsertItem(&entity.MenuItemForm{Name: "", Price: "5"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = menu.UpsertItem(&entity.MenuItemForm{Id: 999, Name: "Suco", Price: "5"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListActiveItems(t *testing.T) {
	setup(t)
	defer teardown()
	menu := MenuService{}

	createMenuItem(t, "X-Tudo", "20", "hamburguer")
	createMenuItem(t, "Coca-Cola", "6", "bebidas")
	hidden := createMenuItem(t, "Suco de Uva", "8", "bebidas")
	require.NoError(t, menu.SetActive(hidden.Id, false))

	items, err := menu.ListActiveItems(AllCategories, "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Coca-Cola", items[0].Name)

	items, err = menu.ListActiveItems("bebidas", "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	items, err = menu.ListActiveItems("", "TUDO")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "X-Tudo", items[0].Name)

	categories, err := menu.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"bebidas", "hamburguer"}, categories)

	all, allCategories, err := menu.ListAllItems()
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, []string{"bebidas", "hamburguer"}, allCategories)

	assert.ErrorIs(t, menu.SetActive(999, true), ErrNotFound)
}

func TestDeleteItemInUse(t *testing.T) {
	setup(t)
	defer teardown()
	menu := MenuService{}
	orders := OrderService{}

	customer := createUser(t, "05", "", model.RoleCustomer)
	burger := createMenuItem(t, "X-Salada", "15", "hamburguer")
	unused := createMenuItem(t, "Batata", "10", "porcoes")

	_, err := orders.CreateOrder(identity(customer), &entity.OrderForm{
		Items: []entity.LineItem{{MenuItemId: burger.Id, Quantity: 1}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, menu.DeleteItem(burger.Id), ErrItemInUse)
	_, err = menu.GetItem(burger.Id)
	assert.NoError(t, err)

	require.NoError(t, menu.DeleteItem(unused.Id))
	_, err = menu.GetItem(unused.Id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, menu.DeleteItem(unused.Id), ErrNotFound)
}

package service

import (
	"testing"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserAdminService(t *testing.T) {
	setup(t)
	defer teardown()

	users := UserAdminService{}
	admin, err := (&UserService{}).GetFirstAdmin()
	require.NoError(t, err)
	actor := identity(admin)

	table, err := users.CreateUser(&entity.UserForm{Username: "3", Role: model.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "03", table.Username)

	_, err = users.CreateUser(&entity.UserForm{Username: "03"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = users.CreateUser(&entity.UserForm{Username: "caixa", Role: model.RoleEmployee, Password: "123"})
	assert.ErrorIs(t, err, ErrValidation)

	cashier, err := users.CreateUser(&entity.UserForm{Username: "caixa", Role: model.RoleEmployee, Password: "caixa123"})
	require.NoError(t, err)

	list, err := users.ListUsers()
	require.NoError(t, err)
	assert.Len(t, list, 3)

	promoted, err := users.ToggleAdmin(actor, cashier.Id)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, promoted.Role())

	_, err = users.ToggleAdmin(actor, admin.Id)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, users.ResetPassword(cashier.Id, "novasenha"))
	_, err = (&UserService{}).Authenticate("caixa", "novasenha", model.RoleAdmin, "")
	assert.NoError(t, err)
	assert.ErrorIs(t, users.ResetPassword(9999, "novasenha"), ErrNotFound)

	assert.ErrorIs(t, users.DeleteUser(actor, admin.Id), ErrForbidden)
	require.NoError(t, users.DeleteUser(actor, table.Id))
	assert.ErrorIs(t, users.DeleteUser(actor, table.Id), ErrNotFound)
}

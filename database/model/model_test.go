package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderNumber(t *testing.T) {
	for _, id := range []string{"", "a", "0b7f7f3e-1c1a-4f4e-9a57-3b0c6a0c5d11", "zzzzzzzz"} {
		n := OrderNumber(id)
		assert.Len(t, n, 3, id)
		assert.GreaterOrEqual(t, n, "100", id)
		assert.LessOrEqual(t, n, "999", id)
	}
	assert.Equal(t, OrderNumber("same"), OrderNumber("same"))
}

func TestUserRole(t *testing.T) {
	u := &User{}
	assert.Equal(t, RoleCustomer, u.Role())
	u.SetRole(RoleEmployee)
	assert.Equal(t, RoleEmployee, u.Role())
	u.SetRole(RoleAdmin)
	assert.Equal(t, RoleAdmin, u.Role())
	assert.False(t, u.IsEmployee)
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
	assert.False(t, Role("chef").Valid())
}

func TestStatusAndPayment(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusReady.IsTerminal())
	assert.False(t, OrderStatus("served").Valid())
	assert.True(t, PaymentPix.Valid())
	assert.False(t, PaymentMethod("cheque").Valid())
}

func TestSubtotal(t *testing.T) {
	item := &OrderItem{Price: decimal.RequireFromString("12.50"), Quantity: 3}
	assert.True(t, decimal.RequireFromString("37.5").Equal(item.Subtotal()))
}

package service

import (
	"testing"

	"github.com/allblack/allblack-panel/database/model"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	type actor struct {
		role  model.Role
		owner bool
	}
	staff := []actor{{model.RoleEmployee, false}, {model.RoleAdmin, false}}
	owner := actor{model.RoleCustomer, true}
	stranger := actor{model.RoleCustomer, false}

	allowed := map[[2]model.OrderStatus][]actor{
		{model.StatusPending, model.StatusPreparing}: staff,
		{model.StatusPending, model.StatusCancelled}: append([]actor{owner}, staff...),
		{model.StatusPreparing, model.StatusReady}:   staff,
		{model.StatusReady, model.StatusCompleted}:   staff,
	}
	everyone := append([]actor{owner, stranger}, staff...)

	for _, from := range model.OrderStatuses {
		for _, to := range model.OrderStatuses {
			for _, a := range everyone {
				err := CanTransition(from, to, a.role, a.owner)
				permitted := false
				for _, p := range allowed[[2]model.OrderStatus{from, to}] {
					if p == a {
						permitted = true
					}
				}
				switch {
				case permitted:
					assert.NoError(t, err, "%s -> %s by %v", from, to, a)
				case len(allowed[[2]model.OrderStatus{from, to}]) == 0:
					assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s by %v", from, to, a)
				default:
					assert.ErrorIs(t, err, ErrForbidden, "%s -> %s by %v", from, to, a)
				}
			}
		}
	}
}

func TestNextStatuses(t *testing.T) {
	assert.Equal(t, []model.OrderStatus{model.StatusPreparing, model.StatusCancelled},
		NextStatuses(model.StatusPending, model.RoleEmployee, false))
	assert.Equal(t, []model.OrderStatus{model.StatusCancelled},
		NextStatuses(model.StatusPending, model.RoleCustomer, true))
	assert.Empty(t, NextStatuses(model.StatusPending, model.RoleCustomer, false))
	assert.Empty(t, NextStatuses(model.StatusCompleted, model.RoleAdmin, false))
	assert.Equal(t, []model.OrderStatus{model.StatusCompleted},
		NextStatuses(model.StatusReady, model.RoleAdmin, false))
}

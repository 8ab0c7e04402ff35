package service

import (
	"fmt"

	"github.com/allblack/allblack-panel/database/model"
)

// actorRule says who may perform a transition.
type actorRule struct {
	staff bool
	owner bool // the customer who placed the order
}

var transitions = map[model.OrderStatus]map[model.OrderStatus]actorRule{
	model.StatusPending: {
		model.StatusPreparing: {staff: true},
		model.StatusCancelled: {staff: true, owner: true},
	},
	model.StatusPreparing: {
		model.StatusReady: {staff: true},
	},
	model.StatusReady: {
		model.StatusCompleted: {staff: true},
	},
}

// CanTransition checks that role may move an order from one status to
// another. isOwner tells whether the actor placed the order.
func CanTransition(from, to model.OrderStatus, role model.Role, isOwner bool) error {
	if from.IsTerminal() {
		return fmt.Errorf("%w: order is already %s", ErrInvalidTransition, from)
	}
	rule, ok := transitions[from][to]
	if !ok {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if role.IsStaff() && rule.staff {
		return nil
	}
	if role == model.RoleCustomer && isOwner && rule.owner {
		return nil
	}
	return fmt.Errorf("%w: %s can not move an order from %s to %s", ErrForbidden, role, from, to)
}

// NextStatuses lists the statuses role may move an order in from to.
func NextStatuses(from model.OrderStatus, role model.Role, isOwner bool) []model.OrderStatus {
	next := make([]model.OrderStatus, 0, 2)
	for _, to := range model.OrderStatuses {
		if CanTransition(from, to, role, isOwner) == nil {
			next = append(next, to)
		}
	}
	return next
}

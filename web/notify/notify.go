// Package notify fans order events out to the push channels (websocket,
// message broker, Telegram). Sinks run asynchronously after the database
// write has committed; their failures are logged and never reach the caller.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/logger"
	"github.com/allblack/allblack-panel/util/common"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	MenuChanged        EventType = "menu.changed"
)

// Event describes one committed change.
type Event struct {
	Type        EventType         `json:"event"`
	OrderId     int               `json:"order_id,omitempty"`
	OrderNumber string            `json:"order_number,omitempty"`
	UserId      int               `json:"user_id,omitempty"`
	OldStatus   model.OrderStatus `json:"old_status,omitempty"`
	NewStatus   model.OrderStatus `json:"new_status,omitempty"`
	ChangedBy   string            `json:"changed_by,omitempty"`
	Total       decimal.Decimal   `json:"total"`
	Timestamp   time.Time         `json:"timestamp"`

	// Order is the order after the change, nil for menu events.
	Order *model.Order `json:"-"`
}

// Sink receives events. Notify should return promptly once ctx is done.
type Sink interface {
	Name() string
	Notify(ctx context.Context, e Event) error
}

const sinkTimeout = 10 * time.Second

var (
	mu      sync.RWMutex
	sinks   []Sink
	pending sync.WaitGroup
)

// Register adds s to the set of sinks.
func Register(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	sinks = append(sinks, s)
}

// Unregister removes every sink with the given name.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	kept := sinks[:0]
	for _, s := range sinks {
		if s.Name() != name {
			kept = append(kept, s)
		}
	}
	sinks = kept
}

// Reset drops all sinks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	sinks = nil
}

// Emit delivers e to every sink in its own goroutine.
func Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	mu.RLock()
	targets := make([]Sink, len(sinks))
	copy(targets, sinks)
	mu.RUnlock()

	for _, s := range targets {
		pending.Add(1)
		go func(s Sink) {
			defer pending.Done()
			defer common.Recover("notify sink " + s.Name())
			ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
			defer cancel()
			if err := s.Notify(ctx, e); err != nil {
				logger.Warningf("notify %s via %s failed: %v", e.Type, s.Name(), err)
			}
		}(s)
	}
}

// Wait blocks until every emitted event has been handled by its sinks.
func Wait() {
	pending.Wait()
}

// OrderEvent builds the event for a committed change of o.
func OrderEvent(t EventType, o *model.Order, oldStatus model.OrderStatus, changedBy string) Event {
	return Event{
		Type:        t,
		OrderId:     o.Id,
		OrderNumber: o.Number,
		UserId:      o.UserId,
		OldStatus:   oldStatus,
		NewStatus:   o.Status,
		ChangedBy:   changedBy,
		Total:       o.Total,
		Timestamp:   time.Now(),
		Order:       o,
	}
}

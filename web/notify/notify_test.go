package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/allblack/allblack-panel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name string
	err  error

	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Notify(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

type panickingSink struct{}

func (panickingSink) Name() string { return "panic" }

func (panickingSink) Notify(context.Context, Event) error { panic("boom") }

func TestEmitReachesEverySink(t *testing.T) {
	Reset()
	defer Reset()

	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b", err: errors.New("broker down")}
	Register(a)
	Register(b)
	Register(panickingSink{})

	Emit(Event{Type: MenuChanged})
	Wait()

	require.Len(t, a.events, 1)
	require.Len(t, b.events, 1)
	assert.Equal(t, MenuChanged, a.events[0].Type)
	assert.False(t, a.events[0].Timestamp.IsZero())
}

func TestUnregister(t *testing.T) {
	Reset()
	defer Reset()

	a := &recordingSink{name: "a"}
	b := &recordingSink{name: "b"}
	Register(a)
	Register(b)
	Unregister("a")

	Emit(Event{Type: MenuChanged})
	Wait()
	assert.Empty(t, a.events)
	assert.Len(t, b.events, 1)
}

func TestOrderEvent(t *testing.T) {
	order := &model.Order{
		Id:     7,
		Number: "123",
		UserId: 3,
		Status: model.StatusReady,
		Total:  decimal.RequireFromString("18.90"),
	}
	e := OrderEvent(OrderStatusChanged, order, model.StatusPreparing, "maria")
	assert.Equal(t, 7, e.OrderId)
	assert.Equal(t, "123", e.OrderNumber)
	assert.Equal(t, 3, e.UserId)
	assert.Equal(t, model.StatusPreparing, e.OldStatus)
	assert.Equal(t, model.StatusReady, e.NewStatus)
	assert.Equal(t, "maria", e.ChangedBy)
	assert.Same(t, order, e.Order)
}

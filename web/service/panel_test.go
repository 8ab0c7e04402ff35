package service

import (
	"testing"
	"time"

	"github.com/allblack/allblack-panel/database/model"
	"github.com/allblack/allblack-panel/web/websocket"

	"github.com/stretchr/testify/assert"
)

func TestPushStatus(t *testing.T) {
	assert.Equal(t, PushStatus{}, pushStatus(nil))

	hub := websocket.NewHub()
	go hub.Run()
	defer hub.Stop()
	client := &websocket.Client{ID: "kds", Role: model.RoleEmployee, Send: make(chan []byte, 1), Hub: hub}
	hub.Register(client)
	assert.Eventually(t, func() bool { return hub.GetClientCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Broadcast(websocket.MessageTypeMenuChanged, 0, nil)

	assert.Eventually(t, func() bool {
		status := pushStatus(hub)
		return status.Clients == 1 && status.Sent == 1
	}, time.Second, 10*time.Millisecond)
}

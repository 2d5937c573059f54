package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/techkr_be/internal/realtime"
)

func TestDefaultHubAcceptsClients(t *testing.T) {
	hub := defaultHub(nil)
	user := uuid.New()
	c := realtime.NewClient(user, nil)

	registered := make(chan struct{})
	go func() {
		hub.RegisterClient(c)
		close(registered)
	}()

	select {
	case <-registered:
	case <-time.After(time.Second):
		t.Fatal("RegisterClient did not return")
	}
	require.Eventually(t, func() bool { return hub.Connected(user) == 1 }, time.Second, 10*time.Millisecond)

	hub.SendToUser(context.Background(), user, map[string]string{"type": "ping"})
	select {
	case msg := <-c.Send:
		assert.JSONEq(t, `{"type":"ping"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	hub.UnregisterClient(c)
	require.Eventually(t, func() bool { return hub.Connected(user) == 0 }, time.Second, 10*time.Millisecond)
}

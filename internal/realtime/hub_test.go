package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversLocallyWithoutRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	alice := uuid.New()
	bob := uuid.New()
	a := NewClient(alice, nil)
	b := NewClient(bob, nil)
	hub.RegisterClient(a)
	hub.RegisterClient(b)

	require.Eventually(t, func() bool { return hub.Connected(alice) == 1 }, time.Second, 10*time.Millisecond)

	hub.SendToUser(ctx, alice, map[string]string{"type": "APPLICATION_RECEIVED"})

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"APPLICATION_RECEIVED"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("no message for alice")
	}
	assert.Empty(t, b.Send)

	hub.UnregisterClient(a)
	require.Eventually(t, func() bool { return hub.Connected(alice) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-a.Send
	assert.False(t, open)
}

func TestHubShutdownClosesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	c := NewClient(uuid.New(), nil)
	hub.RegisterClient(c)
	cancel()
	<-stopped

	_, open := <-c.Send
	assert.False(t, open)

	late := NewClient(uuid.New(), nil)
	hub.RegisterClient(late)
	_, open = <-late.Send
	assert.False(t, open)
	hub.UnregisterClient(late)
}

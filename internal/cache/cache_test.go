package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	c := New(nil, time.Minute)

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))
	var out map[string]int
	assert.False(t, c.Get(ctx, "k", &out))
	assert.NoError(t, c.Del(ctx, "k"))

	var none *Cache
	assert.False(t, none.Get(ctx, "k", &out))
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("6f1c2f1e-3b1d-4b8e-9a43-1f6b0c2d9e11")
	assert.Equal(t, "dashboard:talent:6f1c2f1e-3b1d-4b8e-9a43-1f6b0c2d9e11", TalentDashboardKey(id))
	assert.Equal(t, "dashboard:client:6f1c2f1e-3b1d-4b8e-9a43-1f6b0c2d9e11", ClientDashboardKey(id))
}

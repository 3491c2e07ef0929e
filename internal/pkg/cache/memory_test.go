package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var got payload
	found, err := m.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, m.SetJSON(ctx, "board", payload{Name: "duty", Count: 3}, time.Minute))

	found, err = m.GetJSON(ctx, "board", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "duty", Count: 3}, got)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.SetJSON(ctx, "board", payload{Count: 1}, time.Minute))

	now = now.Add(61 * time.Second)
	var got payload
	found, err := m.GetJSON(ctx, "board", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.SetJSON(ctx, "board", payload{Count: 1}, 0))
	require.NoError(t, m.Delete(ctx, "board"))

	var got payload
	found, err := m.GetJSON(ctx, "board", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

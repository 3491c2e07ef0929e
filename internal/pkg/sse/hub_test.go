package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesEverySubscriberOfAUser(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("w1")
	defer cancelA()
	b, cancelB := h.Subscribe("w1")
	defer cancelB()
	other, cancelOther := h.Subscribe("w2")
	defer cancelOther()

	h.Publish("w1", Event{UserID: "w1", Event: "notification", Data: "hi"})

	assert.Equal(t, "hi", (<-a).Data)
	assert.Equal(t, "hi", (<-b).Data)
	assert.Len(t, other, 0)
	assert.Equal(t, 2, h.SubscriberCount("w1"))
	assert.Equal(t, 3, h.TotalSubscribers())
}

func TestHub_CancelClosesAndIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("w1")

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.SubscriberCount("w1"))
	assert.Equal(t, 0, h.TotalSubscribers())

	// publishing to a departed user is a no-op
	h.Publish("w1", Event{Event: "notification"})
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe("w1")
	defer cancel()

	for i := 0; i < bufferSize+5; i++ {
		h.Publish("w1", Event{Event: "tick", Data: i})
	}

	require.Len(t, ch, bufferSize)
	assert.Equal(t, 0, (<-ch).Data)
}

func TestHub_PublishToManyAndBroadcast(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe("w1")
	defer cancelA()
	b, cancelB := h.Subscribe("w2")
	defer cancelB()

	h.PublishToMany([]string{"w1", "w2", "w3"}, Event{Event: "duty_board"})
	assert.Equal(t, "w1", (<-a).UserID)
	assert.Equal(t, "w2", (<-b).UserID)

	h.Broadcast(Event{Event: "ping"})
	assert.Equal(t, "ping", (<-a).Event)
	assert.Equal(t, "ping", (<-b).Event)
}

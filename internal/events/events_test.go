package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeEventEnvelope(t *testing.T) {
	raw := MakeEvent("req-1", TypeExtractionDone, 1, map[string]string{"company": "Acme"})

	var e Event
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TypeExtractionDone, e.Type)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "req-1", e.RequestID)
	assert.False(t, e.At.IsZero())
	assert.JSONEq(t, `{"company":"Acme"}`, string(e.Data))
}

func TestHubFanOutAndSlowClientDrop(t *testing.T) {
	h := NewHub()
	a := h.Subscribe()
	b := h.Subscribe()

	h.Publish("one")
	assert.Equal(t, "one", <-a)
	assert.Equal(t, "one", <-b)

	// a slow client loses events instead of blocking the publisher
	for i := 0; i < clientBuffer+5; i++ {
		h.Publish("x")
	}
	assert.Len(t, a, clientBuffer)

	for len(b) > 0 {
		<-b
	}
	h.Unsubscribe(a)
	h.Publish("after")
	assert.Equal(t, "after", <-b)
	h.Unsubscribe(b)
}

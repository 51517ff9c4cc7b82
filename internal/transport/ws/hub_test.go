package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHubDeliversToSessionSubscribers(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 8)}
	hub.Register(conn)

	hub.SessionEvent("s1", "feedback", map[string]int{"score": 1})

	msg := receive(t, conn)
	require.Equal(t, "feedback", msg.Type)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, 1, payload["score"])
}

func TestHubIsolatesSessions(t *testing.T) {
	hub := NewHub()

	mine := &Connection{SessionID: "s1", Send: make(chan []byte, 8)}
	other := &Connection{SessionID: "s2", Send: make(chan []byte, 8)}
	hub.Register(mine)
	hub.Register(other)

	hub.SessionEvent("s1", "advance", map[string]int{"index": 1})

	msg := receive(t, mine)
	require.Equal(t, "advance", msg.Type)

	select {
	case data := <-other.Send:
		t.Fatalf("foreign session received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub()

	first := &Connection{SessionID: "s1", Send: make(chan []byte, 8)}
	second := &Connection{SessionID: "s1", Send: make(chan []byte, 8)}
	hub.Register(first)
	hub.Register(second)

	hub.SessionEvent("s1", "completed", map[string]int{"score": 3})

	require.Equal(t, "completed", receive(t, first).Type)
	require.Equal(t, "completed", receive(t, second).Type)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "s1", Send: make(chan []byte, 8)}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		require.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// Events after unregister go nowhere, without panicking
	hub.SessionEvent("s1", "feedback", nil)
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "s1", Send: make(chan []byte)} // no buffer, never read
	hub.Register(conn)

	for i := 0; i < 10; i++ {
		hub.SessionEvent("s1", "feedback", map[string]int{"n": i})
	}

	// The dispatch loop must stay responsive for other sessions
	live := &Connection{SessionID: "s2", Send: make(chan []byte, 8)}
	hub.Register(live)
	hub.SessionEvent("s2", "advance", nil)
	require.Equal(t, "advance", receive(t, live).Type)
}

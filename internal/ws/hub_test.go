package ws

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(zerolog.Nop())
}

func drain(c *Client) []Event {
	var events []Event
	for {
		select {
		case e := <-c.send:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestHub_BroadcastRoom(t *testing.T) {
	hub := newTestHub()

	alice := NewClient(hub, nil, 1, "alice")
	bob := NewClient(hub, nil, 2, "bob")
	carol := NewClient(hub, nil, 3, "carol")
	hub.Register(alice)
	hub.Register(bob)
	hub.Register(carol)

	hub.JoinRoom(alice, "7-1-2")
	hub.JoinRoom(bob, "7-1-2")
	hub.JoinRoom(carol, "7-1-3")
	require.Equal(t, 2, hub.RoomSize("7-1-2"))

	hub.BroadcastRoom("7-1-2", Event{Type: EventNewMessage, Data: "hi"})

	require.Len(t, drain(alice), 1)
	require.Len(t, drain(bob), 1)
	require.Empty(t, drain(carol), "other rooms must not receive the event")
}

func TestHub_BroadcastAll(t *testing.T) {
	hub := newTestHub()

	alice := NewClient(hub, nil, 1, "alice")
	bob := NewClient(hub, nil, 2, "bob")
	hub.Register(alice)
	hub.Register(bob)

	hub.BroadcastAll(Event{Type: EventNewActivity})

	require.Len(t, drain(alice), 1)
	require.Len(t, drain(bob), 1)
}

func TestHub_Unregister(t *testing.T) {
	hub := newTestHub()

	alice := NewClient(hub, nil, 1, "alice")
	hub.Register(alice)
	hub.JoinRoom(alice, "7-1-2")

	hub.Unregister(alice)
	require.Zero(t, hub.RoomSize("7-1-2"))

	// send channel is closed so pumps can exit
	_, open := <-alice.send
	require.False(t, open)

	// a second unregister is a no-op
	hub.Unregister(alice)
}

func TestHub_JoinRoom_UnknownClient(t *testing.T) {
	hub := newTestHub()

	ghost := NewClient(hub, nil, 9, "ghost")
	hub.JoinRoom(ghost, "7-1-9")
	require.Zero(t, hub.RoomSize("7-1-9"))
}

func TestHub_BroadcastRoom_DropsWhenBufferFull(t *testing.T) {
	hub := newTestHub()

	slow := NewClient(hub, nil, 1, "slow")
	hub.Register(slow)
	hub.JoinRoom(slow, "7-1-2")

	for i := 0; i < sendBufferSize+10; i++ {
		hub.BroadcastRoom("7-1-2", Event{Type: EventNewMessage})
	}

	// overflow is dropped, not blocked on
	require.Len(t, drain(slow), sendBufferSize)
}

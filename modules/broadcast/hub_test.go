package broadcast

import (
	"context"
	"testing"
	"time"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

// waitFor polls until the condition holds. Register and unregister go
// through the hub's channel, so effects are observed asynchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRoomNames(t *testing.T) {
	if got := UserRoom(42); got != "user-42" {
		t.Errorf("UserRoom(42) = %q, want %q", got, "user-42")
	}
	if got := ProjectRoom("7"); got != "project-7" {
		t.Errorf("ProjectRoom(7) = %q, want %q", got, "project-7")
	}
}

func TestHub_RegisterJoinsUserRoom(t *testing.T) {
	hub, cancel := startHub(t)

	// Two sessions of the same user share one user room.
	first := &Client{ID: "c1", UserID: 1}
	second := &Client{ID: "c2", UserID: 1}
	hub.Register(first)
	hub.Register(second)

	waitFor(t, func() bool { return hub.ClientCount() == 2 })
	if got := hub.RoomClientCount(UserRoom(1)); got != 2 {
		t.Errorf("user room members = %d, want 2", got)
	}

	hub.Unregister(first)
	hub.Unregister(second)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	cancel()
	hub.Wait()
}

func TestHub_JoinAndLeaveRoom(t *testing.T) {
	hub, cancel := startHub(t)

	client := &Client{ID: "c1", UserID: 1}
	hub.Register(client)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	room := ProjectRoom("9")
	hub.JoinRoom(client.ID, room)
	if got := hub.RoomClientCount(room); got != 1 {
		t.Errorf("room members after join = %d, want 1", got)
	}

	hub.LeaveRoom(client.ID, room)
	if got := hub.RoomClientCount(room); got != 0 {
		t.Errorf("room members after leave = %d, want 0", got)
	}

	// Joining with an unknown client id is ignored.
	hub.JoinRoom("ghost", room)
	if got := hub.RoomClientCount(room); got != 0 {
		t.Errorf("room members after ghost join = %d, want 0", got)
	}

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	cancel()
	hub.Wait()
}

func TestHub_UnregisterCleansAllMemberships(t *testing.T) {
	hub, cancel := startHub(t)

	client := &Client{ID: "c1", UserID: 3}
	hub.Register(client)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.JoinRoom(client.ID, ProjectRoom("1"))
	hub.JoinRoom(client.ID, ProjectRoom("2"))

	hub.Unregister(client)
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	for _, room := range []string{UserRoom(3), ProjectRoom("1"), ProjectRoom("2")} {
		if got := hub.RoomClientCount(room); got != 0 {
			t.Errorf("room %s still has %d members after unregister", room, got)
		}
	}

	cancel()
	hub.Wait()
}

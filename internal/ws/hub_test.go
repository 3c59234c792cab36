package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type presenceRecorder struct {
	mu      sync.Mutex
	online  []string
	offline []string
}

func (r *presenceRecorder) hooks() (func(string), func(string)) {
	return func(userID string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.online = append(r.online, userID)
		}, func(userID string) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.offline = append(r.offline, userID)
		}
}

func (r *presenceRecorder) snapshot() (online, offline []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.online...), append([]string(nil), r.offline...)
}

func newTestClient(h *Hub, userID string) *Client {
	return NewClient(h, nil, nil, userID)
}

func drain(c *Client) []Event {
	var events []Event
	for {
		select {
		case ev := <-c.send:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestDeliverToRoomExcludesActor(t *testing.T) {
	h := NewHub(0, time.Minute)
	alice := newTestClient(h, "alice")
	aliceTablet := newTestClient(h, "alice")
	bob := newTestClient(h, "bob")
	for _, c := range []*Client{alice, aliceTablet, bob} {
		h.Register(c)
		h.JoinRoom(c, "r1")
	}

	h.DeliverToRoom("r1", Event{Type: EventUserTyping}, "alice")

	// exclusion covers every connection of the excluded user
	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(aliceTablet))
	require.Len(t, drain(bob), 1)

	h.DeliverToRoom("r1", Event{Type: EventNewMessage}, "")
	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(aliceTablet), 1)
	assert.Len(t, drain(bob), 1)
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	h := NewHub(0, time.Minute)
	bob := newTestClient(h, "bob")
	h.Register(bob)
	h.JoinRoom(bob, "r1")
	h.LeaveRoom(bob, "r1")

	h.DeliverToRoom("r1", Event{Type: EventNewMessage}, "")
	assert.Empty(t, drain(bob))
	assert.False(t, h.IsSubscribed("bob", "r1"))
}

func TestPresenceGraceAbsorbsReconnect(t *testing.T) {
	rec := &presenceRecorder{}
	h := NewHub(80*time.Millisecond, time.Minute)
	h.SetPresenceHooks(rec.hooks())

	alice := newTestClient(h, "alice")
	h.Register(alice)
	online, offline := rec.snapshot()
	assert.Equal(t, []string{"alice"}, online)
	assert.Empty(t, offline)

	// disconnect and reconnect within the grace window: no offline, no second online
	h.Unregister(alice)
	time.Sleep(20 * time.Millisecond)
	replacement := newTestClient(h, "alice")
	h.Register(replacement)
	time.Sleep(150 * time.Millisecond)

	online, offline = rec.snapshot()
	assert.Equal(t, []string{"alice"}, online)
	assert.Empty(t, offline)

	// a real disconnect goes offline after the grace window
	h.Unregister(replacement)
	time.Sleep(150 * time.Millisecond)
	_, offline = rec.snapshot()
	assert.Equal(t, []string{"alice"}, offline)
}

func TestSecondConnectionDoesNotReannounceOnline(t *testing.T) {
	rec := &presenceRecorder{}
	h := NewHub(0, time.Minute)
	h.SetPresenceHooks(rec.hooks())

	phone := newTestClient(h, "alice")
	laptop := newTestClient(h, "alice")
	h.Register(phone)
	h.Register(laptop)

	online, _ := rec.snapshot()
	assert.Equal(t, []string{"alice"}, online)

	// one connection remains, still online
	h.Unregister(phone)
	time.Sleep(20 * time.Millisecond)
	_, offline := rec.snapshot()
	assert.Empty(t, offline)
	assert.True(t, h.IsOnline("alice"))
}

func TestTypingExpiresWithoutStopTyping(t *testing.T) {
	var mu sync.Mutex
	var expired []string
	h := NewHub(0, 40*time.Millisecond)
	h.SetTypingExpiredHook(func(roomID, userID string) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, roomID+"/"+userID)
	})

	alice := newTestClient(h, "alice")
	h.Register(alice)
	h.JoinRoom(alice, "r1")

	h.Typing("r1", "alice")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"r1/alice"}, expired)
	mu.Unlock()
}

func TestStopTypingCancelsExpiry(t *testing.T) {
	var mu sync.Mutex
	var expired []string
	h := NewHub(0, 40*time.Millisecond)
	h.SetTypingExpiredHook(func(roomID, userID string) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, roomID+"/"+userID)
	})

	h.Typing("r1", "alice")
	h.StopTyping("r1", "alice")
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	assert.Empty(t, expired)
	mu.Unlock()
}

func TestStaleExpiryDoesNotClearReArmedTyping(t *testing.T) {
	h := NewHub(0, time.Minute)

	h.Typing("r1", "alice")
	h.mu.Lock()
	stale := h.typing["r1"]["alice"]
	h.mu.Unlock()

	// re-typing replaces the timer; the old expiry callback must not tear
	// down the fresh indicator
	h.Typing("r1", "alice")
	assert.False(t, h.clearTyping("r1", "alice", stale))

	h.mu.Lock()
	_, armed := h.typing["r1"]["alice"]
	h.mu.Unlock()
	assert.True(t, armed)

	// an explicit stop still clears it
	h.StopTyping("r1", "alice")
	h.mu.Lock()
	_, armed = h.typing["r1"]["alice"]
	h.mu.Unlock()
	assert.False(t, armed)
}

func TestUnregisterClearsSubscriptionsAndTyping(t *testing.T) {
	var mu sync.Mutex
	var expired []string
	h := NewHub(0, time.Minute)
	h.SetTypingExpiredHook(func(roomID, userID string) {
		mu.Lock()
		defer mu.Unlock()
		expired = append(expired, roomID+"/"+userID)
	})

	alice := newTestClient(h, "alice")
	h.Register(alice)
	h.JoinRoom(alice, "r1")
	h.JoinRoom(alice, "r2")
	h.Typing("r1", "alice")

	h.Unregister(alice)

	assert.False(t, h.IsSubscribed("alice", "r1"))
	assert.False(t, h.IsSubscribed("alice", "r2"))
	mu.Lock()
	assert.Equal(t, []string{"r1/alice"}, expired)
	mu.Unlock()

	// delivery after unregister must not panic on the closed channel
	h.DeliverToRoom("r1", Event{Type: EventNewMessage}, "")
}

func TestStatuses(t *testing.T) {
	h := NewHub(0, time.Minute)
	alice := newTestClient(h, "alice")
	h.Register(alice)

	statuses := h.Statuses([]string{"alice", "bob"})
	assert.True(t, statuses["alice"])
	assert.False(t, statuses["bob"])
}

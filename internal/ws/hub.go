package ws

import (
	"sync"
	"time"
)

// Hub tracks this instance's connected clients, their room subscriptions,
// typing timers and presence state. Fan-out beyond this instance goes through
// a Broadcaster; the hub only ever delivers to sockets it holds.
type Hub struct {
	mu          sync.Mutex
	clients     map[*Client]struct{}
	userClients map[string]map[*Client]struct{}
	rooms       map[string]map[*Client]struct{}
	typing      map[string]map[string]*time.Timer
	offline     map[string]*time.Timer

	presenceGrace time.Duration
	typingTTL     time.Duration

	// presence/typing hooks, wired by the gateway. Called outside the lock.
	onOnline        func(userID string)
	onOffline       func(userID string)
	onTypingExpired func(roomID, userID string)
}

// NewHub creates a hub. presenceGrace debounces offline announcements after
// the last connection drops; zero disables the grace window. typingTTL bounds
// how long a typing indicator survives without a stop-typing.
func NewHub(presenceGrace, typingTTL time.Duration) *Hub {
	return &Hub{
		clients:       make(map[*Client]struct{}),
		userClients:   make(map[string]map[*Client]struct{}),
		rooms:         make(map[string]map[*Client]struct{}),
		typing:        make(map[string]map[string]*time.Timer),
		offline:       make(map[string]*time.Timer),
		presenceGrace: presenceGrace,
		typingTTL:     typingTTL,
	}
}

// SetPresenceHooks registers the callbacks fired when a user transitions
// online/offline.
func (h *Hub) SetPresenceHooks(onOnline, onOffline func(userID string)) {
	h.onOnline = onOnline
	h.onOffline = onOffline
}

// SetTypingExpiredHook registers the callback fired when a typing indicator
// expires without an explicit stop-typing.
func (h *Hub) SetTypingExpiredHook(hook func(roomID, userID string)) {
	h.onTypingExpired = hook
}

// Register adds a client. The user goes online when this is their first
// connection; a reconnect inside the grace window cancels the pending offline
// announcement instead.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.userClients[c.UserID] == nil {
		h.userClients[c.UserID] = make(map[*Client]struct{})
	}
	h.userClients[c.UserID][c] = struct{}{}
	first := len(h.userClients[c.UserID]) == 1

	cameBack := false
	if timer, ok := h.offline[c.UserID]; ok {
		timer.Stop()
		delete(h.offline, c.UserID)
		cameBack = true
	}
	onOnline := h.onOnline
	h.mu.Unlock()

	if first && !cameBack && onOnline != nil {
		onOnline(c.UserID)
	}
}

// Unregister removes a client, leaves all its rooms and clears its typing
// indicators. When the user's last connection drops, the offline announcement
// is deferred by the grace window to absorb reconnect blips.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)

	expired := h.removeFromRoomsLocked(c)

	if set, ok := h.userClients[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.userClients, c.UserID)
			h.scheduleOfflineLocked(c.UserID)
		}
	}
	close(c.send)
	onTypingExpired := h.onTypingExpired
	h.mu.Unlock()

	if onTypingExpired != nil {
		for _, e := range expired {
			onTypingExpired(e.roomID, e.userID)
		}
	}
}

type typingKey struct{ roomID, userID string }

// removeFromRoomsLocked drops the client from every room it joined and
// returns the typing indicators that must be announced as stopped.
func (h *Hub) removeFromRoomsLocked(c *Client) []typingKey {
	var expired []typingKey
	for roomID := range c.rooms {
		if set, ok := h.rooms[roomID]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.rooms, roomID)
			}
		}
		// only clear typing when no other connection of this user remains in the room
		if h.subscribedLocked(c.UserID, roomID, c) {
			continue
		}
		if timers, ok := h.typing[roomID]; ok {
			if timer, ok := timers[c.UserID]; ok {
				timer.Stop()
				delete(timers, c.UserID)
				if len(timers) == 0 {
					delete(h.typing, roomID)
				}
				expired = append(expired, typingKey{roomID, c.UserID})
			}
		}
	}
	c.rooms = make(map[string]struct{})
	return expired
}

func (h *Hub) scheduleOfflineLocked(userID string) {
	onOffline := h.onOffline
	if onOffline == nil {
		return
	}
	if h.presenceGrace <= 0 {
		go onOffline(userID)
		return
	}
	h.offline[userID] = time.AfterFunc(h.presenceGrace, func() {
		h.mu.Lock()
		_, reconnected := h.userClients[userID]
		delete(h.offline, userID)
		h.mu.Unlock()
		if !reconnected {
			onOffline(userID)
		}
	})
}

// JoinRoom subscribes the client to a room's broadcasts. Authorization is the
// gateway's job; the hub only tracks membership.
func (h *Hub) JoinRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]struct{})
	}
	h.rooms[roomID][c] = struct{}{}
	c.rooms[roomID] = struct{}{}
}

// LeaveRoom unsubscribes the client from a room.
func (h *Hub) LeaveRoom(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.rooms[roomID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(c.rooms, roomID)
}

// DeliverToRoom writes an event to every client subscribed to the room on
// this instance, skipping every connection of excludeUser when set.
func (h *Hub) DeliverToRoom(roomID string, ev Event, excludeUser string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if excludeUser != "" && c.UserID == excludeUser {
			continue
		}
		select {
		case c.send <- ev:
		default:
			// slow consumer, drop the frame rather than block the hub
		}
	}
}

// DeliverToUser writes an event to every connection of one user on this
// instance.
func (h *Hub) DeliverToUser(userID string, ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.userClients[userID] {
		select {
		case c.send <- ev:
		default:
		}
	}
}

// IsSubscribed reports whether any connection of the user is subscribed to
// the room on this instance.
func (h *Hub) IsSubscribed(userID, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subscribedLocked(userID, roomID, nil)
}

func (h *Hub) subscribedLocked(userID, roomID string, skip *Client) bool {
	for c := range h.rooms[roomID] {
		if c == skip {
			continue
		}
		if c.UserID == userID {
			return true
		}
	}
	return false
}

// IsOnline reports whether the user has any connection on this instance.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.userClients[userID]) > 0
}

// Statuses returns the online flag for each requested user.
func (h *Hub) Statuses(userIDs []string) map[string]bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	statuses := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		statuses[id] = len(h.userClients[id]) > 0
	}
	return statuses
}

// Typing arms (or re-arms) the auto-expiry timer for a user typing in a room.
// Protects against stuck indicators when a stop-typing never arrives.
func (h *Hub) Typing(roomID, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.typing[roomID] == nil {
		h.typing[roomID] = make(map[string]*time.Timer)
	}
	if timer, ok := h.typing[roomID][userID]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(h.typingTTL, func() {
		if h.clearTyping(roomID, userID, timer) && h.onTypingExpired != nil {
			h.onTypingExpired(roomID, userID)
		}
	})
	h.typing[roomID][userID] = timer
}

// StopTyping disarms the expiry timer after an explicit stop-typing.
func (h *Hub) StopTyping(roomID, userID string) {
	h.clearTyping(roomID, userID, nil)
}

// clearTyping removes the indicator. A non-nil armed timer restricts the clear
// to that exact timer: a stale expiry callback racing a re-arm must not tear
// down the fresh indicator.
func (h *Hub) clearTyping(roomID, userID string, armed *time.Timer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	timers, ok := h.typing[roomID]
	if !ok {
		return false
	}
	timer, ok := timers[userID]
	if !ok {
		return false
	}
	if armed != nil && timer != armed {
		return false
	}
	timer.Stop()
	delete(timers, userID)
	if len(timers) == 0 {
		delete(h.typing, roomID)
	}
	return true
}

package ws

// Broadcaster is the fan-out seam. The local implementation reaches only
// sockets on this instance; the Redis implementation relays events across
// instances so a client connected elsewhere still receives room broadcasts.
type Broadcaster interface {
	// ToRoom delivers an event to everyone subscribed to the room,
	// skipping every connection of excludeUser when non-empty.
	ToRoom(roomID string, ev Event, excludeUser string)
	// ToUser delivers an event to every connection of one user.
	ToUser(userID string, ev Event)
	Close() error
}

// LocalBroadcaster delivers through the in-process hub only. Suitable for
// single-instance deployments.
type LocalBroadcaster struct {
	hub *Hub
}

func NewLocalBroadcaster(hub *Hub) *LocalBroadcaster {
	return &LocalBroadcaster{hub: hub}
}

func (b *LocalBroadcaster) ToRoom(roomID string, ev Event, excludeUser string) {
	b.hub.DeliverToRoom(roomID, ev, excludeUser)
}

func (b *LocalBroadcaster) ToUser(userID string, ev Event) {
	b.hub.DeliverToUser(userID, ev)
}

func (b *LocalBroadcaster) Close() error { return nil }

package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const broadcastChannel = "chat.events"

type envelope struct {
	Instance    string `json:"instance"`
	Scope       string `json:"scope"` // "room" or "user"
	Target      string `json:"target"`
	ExcludeUser string `json:"exclude_user,omitempty"`
	Event       Event  `json:"event"`
}

// RedisBroadcaster relays events through Redis pub/sub so that a broadcast
// originating on one instance reaches clients connected to another. Local
// delivery happens immediately; the instance ID keeps the subscriber from
// re-delivering its own publications.
type RedisBroadcaster struct {
	hub      *Hub
	rdb      *redis.Client
	sub      *redis.PubSub
	instance string
	cancel   context.CancelFunc
}

func NewRedisBroadcaster(rdb *redis.Client, hub *Hub) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBroadcaster{
		hub:      hub,
		rdb:      rdb,
		sub:      rdb.Subscribe(ctx, broadcastChannel),
		instance: uuid.NewString(),
		cancel:   cancel,
	}
	go b.listen()
	return b
}

func (b *RedisBroadcaster) ToRoom(roomID string, ev Event, excludeUser string) {
	b.hub.DeliverToRoom(roomID, ev, excludeUser)
	b.publish(envelope{Instance: b.instance, Scope: "room", Target: roomID, ExcludeUser: excludeUser, Event: ev})
}

func (b *RedisBroadcaster) ToUser(userID string, ev Event) {
	b.hub.DeliverToUser(userID, ev)
	b.publish(envelope{Instance: b.instance, Scope: "user", Target: userID, Event: ev})
}

func (b *RedisBroadcaster) publish(env envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		log.Printf("Failed to marshal broadcast envelope: %v", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), broadcastChannel, payload).Err(); err != nil {
		log.Printf("Failed to publish broadcast: %v", err)
	}
}

func (b *RedisBroadcaster) listen() {
	for msg := range b.sub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Printf("Failed to unmarshal broadcast envelope: %v", err)
			continue
		}
		if env.Instance == b.instance {
			continue
		}
		switch env.Scope {
		case "room":
			b.hub.DeliverToRoom(env.Target, env.Event, env.ExcludeUser)
		case "user":
			b.hub.DeliverToUser(env.Target, env.Event)
		}
	}
}

func (b *RedisBroadcaster) Close() error {
	b.cancel()
	return b.sub.Close()
}

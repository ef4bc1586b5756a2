package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func drain(c *Client) []Event {
	var out []Event
	for {
		select {
		case ev := <-c.Send:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBroadcastReachesRoomMembersOnly(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()
	otherRoom := primitive.NewObjectID()

	alice := hub.Register(primitive.NewObjectID(), nil)
	bob := hub.Register(primitive.NewObjectID(), nil)
	carol := hub.Register(primitive.NewObjectID(), nil)

	hub.Join(alice, room)
	hub.Join(bob, room)
	hub.Join(carol, otherRoom)

	hub.Broadcast(room, Event{Event: "receiveMessage", Data: "hello"})

	assert.Len(t, drain(alice), 1)
	assert.Len(t, drain(bob), 1)
	assert.Empty(t, drain(carol))
}

func TestBroadcastIncludesOrigin(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	sender := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(sender, room)

	hub.Broadcast(room, Event{Event: "receiveMessage"})
	assert.Len(t, drain(sender), 1)
}

func TestNoDeliveryBeforeJoin(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Broadcast(room, Event{Event: "receiveMessage"})
	assert.Empty(t, drain(client))

	hub.Join(client, room)
	hub.Broadcast(room, Event{Event: "receiveMessage"})
	assert.Len(t, drain(client), 1)
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(client, room)
	hub.Join(client, room)

	hub.Broadcast(room, Event{Event: "receiveMessage"})
	assert.Len(t, drain(client), 1)
}

func TestUnregisterRemovesFromAllRooms(t *testing.T) {
	hub := NewHub()
	roomA := primitive.NewObjectID()
	roomB := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(client, roomA)
	hub.Join(client, roomB)

	hub.Unregister(client)
	assert.False(t, hub.InRoom(client, roomA))
	assert.False(t, hub.InRoom(client, roomB))

	hub.Broadcast(roomA, Event{Event: "receiveMessage"})
	hub.Broadcast(roomB, Event{Event: "receiveMessage"})
	assert.Empty(t, drain(client))
}

func TestPublishBroadcastsProducedEvent(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(client, room)

	err := hub.Publish(room, func() (Event, error) {
		return Event{Event: "receiveMessage", Data: "stored"}, nil
	})
	assert.NoError(t, err)

	got := drain(client)
	assert.Len(t, got, 1)
	assert.Equal(t, "stored", got[0].Data)
}

func TestPublishErrorSuppressesBroadcast(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(client, room)

	err := hub.Publish(room, func() (Event, error) {
		return Event{}, errors.New("append failed")
	})
	assert.Error(t, err)
	assert.Empty(t, drain(client))
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	room := primitive.NewObjectID()

	client := hub.Register(primitive.NewObjectID(), nil)
	hub.Join(client, room)

	for i := 0; i < cap(client.Send)+10; i++ {
		hub.Broadcast(room, Event{Event: "receiveMessage", Data: i})
	}
	assert.Len(t, drain(client), cap(client.Send))
}

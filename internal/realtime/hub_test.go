package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case evt := <-sub.C():
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	schoolID := uuid.New().String()
	matching := hub.Subscribe(TableRooms, Filter{Column: "school_id", Value: schoolID})
	other := hub.Subscribe(TableRooms, Filter{Column: "school_id", Value: uuid.New().String()})
	unfiltered := hub.Subscribe(TableRooms, Filter{})

	evt, err := NewEvent(EventUpdate, TableRooms, map[string]string{"name": "Кабинет 101"}, map[string]string{
		"school_id": schoolID,
	})
	require.NoError(t, err)
	hub.Publish(evt)

	got := waitEvent(t, matching)
	assert.Equal(t, EventUpdate, got.Type)
	assert.Equal(t, TableRooms, got.Table)

	assert.Equal(t, evt.Keys, waitEvent(t, unfiltered).Keys)

	select {
	case <-other.C():
		t.Fatal("event leaked into a foreign filter")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRoutesByTable(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	rooms := hub.Subscribe(TableRooms, Filter{})
	queue := hub.Subscribe(TableQueue, Filter{})

	evt, err := NewEvent(EventInsert, TableQueue, map[string]string{}, nil)
	require.NoError(t, err)
	hub.Publish(evt)

	assert.Equal(t, TableQueue, waitEvent(t, queue).Table)

	select {
	case <-rooms.C():
		t.Fatal("queue event delivered to rooms subscriber")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()
	defer hub.Stop()

	sub := hub.Subscribe(TableRooms, Filter{})
	sub.Unsubscribe()
	sub.Unsubscribe()

	// после отписки Emit — тихий no-op, канал закрыт
	sub.Emit(Event{Type: EventUpdate, Table: TableRooms})
	_, open := <-sub.C()
	assert.False(t, open)
}

func TestHubStopClosesSubscriptions(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	sub := hub.Subscribe(TableRooms, Filter{})
	hub.Stop()

	select {
	case _, open := <-sub.C():
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription left open after hub stop")
	}
}

func TestFilterSyntax(t *testing.T) {
	f := Filter{Column: "room_id", Value: "42"}
	assert.Equal(t, "room_id=eq.42", f.String())
	assert.Equal(t, f, ParseFilter("room_id=eq.42"))

	assert.Equal(t, Filter{}, ParseFilter(""))
	assert.Equal(t, Filter{}, ParseFilter("garbage"))

	assert.True(t, Filter{}.Matches(map[string]string{"any": "thing"}))
	assert.True(t, f.Matches(map[string]string{"room_id": "42"}))
	assert.False(t, f.Matches(map[string]string{"room_id": "7"}))
	assert.False(t, f.Matches(nil))
}

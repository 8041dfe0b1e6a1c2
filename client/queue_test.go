package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

func queueEntry(roomID, userID uuid.UUID, requestedAt time.Time) models.QueueEntry {
	return models.QueueEntry{ID: uuid.New(), RoomID: roomID, UserID: userID, RequestedAt: requestedAt}
}

func TestQueueOpenOrdersByRequestTime(t *testing.T) {
	roomID := uuid.New()
	base := time.Now().UTC()
	second := queueEntry(roomID, uuid.New(), base.Add(time.Minute))
	first := queueEntry(roomID, uuid.New(), base)

	backend := &fakeBackend{queue: []models.QueueEntry{second, first}}
	q := NewQueue(backend, roomID)
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	entries := q.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first.UserID, entries[0].UserID)
	assert.Equal(t, second.UserID, entries[1].UserID)

	assert.Equal(t, 1, q.Position(first.UserID))
	assert.Equal(t, 2, q.Position(second.UserID))
	assert.Equal(t, 0, q.Position(uuid.New()))
}

func TestQueueJoinTwiceReturnsAlreadyQueued(t *testing.T) {
	roomID := uuid.New()
	userID := uuid.New()
	backend := &fakeBackend{queue: []models.QueueEntry{
		queueEntry(roomID, userID, time.Now().UTC()),
	}}

	q := NewQueue(backend, roomID)
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	err := q.Join(context.Background(), userID)
	assert.ErrorIs(t, err, ErrAlreadyQueued)

	// локальная проверка отсекает запрос к бэкенду
	join, _, _ := backend.calls()
	assert.Zero(t, join)
}

func TestQueueJoinConflictMapped(t *testing.T) {
	backend := &fakeBackend{joinErr: ErrConflict}
	q := NewQueue(backend, uuid.New())
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	err := q.Join(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrAlreadyQueued)
}

func TestQueueJoinWrapsBackendError(t *testing.T) {
	backend := &fakeBackend{joinErr: errors.New("boom")}
	q := NewQueue(backend, uuid.New())
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	var writeErr *WriteError
	require.ErrorAs(t, q.Join(context.Background(), uuid.New()), &writeErr)
	assert.Equal(t, "join queue", writeErr.Op)
}

func TestQueueLeaveAbsentIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	q := NewQueue(backend, uuid.New())
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	assert.NoError(t, q.Leave(context.Background(), uuid.New()))
}

func TestQueuePositionsStayContiguous(t *testing.T) {
	roomID := uuid.New()
	base := time.Now().UTC()
	a := queueEntry(roomID, uuid.New(), base)
	b := queueEntry(roomID, uuid.New(), base.Add(time.Minute))
	c := queueEntry(roomID, uuid.New(), base.Add(2*time.Minute))

	backend := &fakeBackend{queue: []models.QueueEntry{a, b, c}}
	q := NewQueue(backend, roomID)
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))

	assert.Equal(t, 2, q.Position(b.UserID))
	assert.Equal(t, 3, q.Position(c.UserID))

	// уход из середины сдвигает хвост, дыр не остается
	backend.setQueue([]models.QueueEntry{a, c})
	require.NoError(t, q.Refresh(context.Background()))

	assert.Equal(t, 1, q.Position(a.UserID))
	assert.Equal(t, 2, q.Position(c.UserID))
	assert.Equal(t, 0, q.Position(b.UserID))
}

func TestQueueRefetchesOnEvent(t *testing.T) {
	roomID := uuid.New()
	backend := &fakeBackend{}
	q := NewQueue(backend, roomID)
	defer q.Close()
	require.NoError(t, q.Open(context.Background()))
	require.Empty(t, q.Entries())

	entry := queueEntry(roomID, uuid.New(), time.Now().UTC())
	backend.setQueue([]models.QueueEntry{entry})

	evt, err := realtime.NewEvent(realtime.EventInsert, realtime.TableQueue, entry, map[string]string{
		"id":      entry.ID.String(),
		"room_id": roomID.String(),
	})
	require.NoError(t, err)
	backend.lastSub().Emit(evt)

	require.Eventually(t, func() bool {
		return q.Position(entry.UserID) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestQueueCloseIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	q := NewQueue(backend, uuid.New())
	require.NoError(t, q.Open(context.Background()))

	q.Close()
	q.Close()
}

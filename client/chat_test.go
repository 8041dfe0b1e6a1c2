package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

func chatMessage(roomID, senderID uuid.UUID, text string) models.RoomMessage {
	return models.RoomMessage{
		ID:       uuid.New(),
		RoomID:   roomID,
		SenderID: senderID,
		Message:  text,
		SentAt:   time.Now().UTC(),
	}
}

func messageEvent(t *testing.T, msg models.RoomMessage) realtime.Event {
	t.Helper()
	evt, err := realtime.NewEvent(realtime.EventInsert, realtime.TableMessages, msg, map[string]string{
		"id":      msg.ID.String(),
		"room_id": msg.RoomID.String(),
	})
	require.NoError(t, err)
	return evt
}

func newTestChat(backend *fakeBackend, roomID uuid.UUID, viewer models.User) *Chat {
	return NewChat(backend, roomID, viewer, RetryPolicy{MaxAttempts: 3})
}

func TestChatSendRejectsEmpty(t *testing.T) {
	backend := &fakeBackend{}
	chat := newTestChat(backend, uuid.New(), models.User{ID: uuid.New()})

	assert.ErrorIs(t, chat.Send(context.Background(), ""), ErrEmptyMessage)
	assert.ErrorIs(t, chat.Send(context.Background(), "   \t "), ErrEmptyMessage)
	assert.Empty(t, backend.sent())
}

func TestChatSendTrims(t *testing.T) {
	backend := &fakeBackend{}
	chat := newTestChat(backend, uuid.New(), models.User{ID: uuid.New()})

	require.NoError(t, chat.Send(context.Background(), "  Hello  "))
	require.Equal(t, []string{"Hello"}, backend.sent())
}

func TestChatSendWrapsBackendError(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("boom")}
	chat := newTestChat(backend, uuid.New(), models.User{ID: uuid.New()})

	var writeErr *WriteError
	require.ErrorAs(t, chat.Send(context.Background(), "Hello"), &writeErr)
	assert.Equal(t, "message", writeErr.Op)
}

func TestChatOpenRetriesThenGivesUp(t *testing.T) {
	backend := &fakeBackend{messagesFails: 10, messagesErr: errors.New("boom")}

	var exhausted int32
	chat := NewChat(backend, uuid.New(), models.User{ID: uuid.New()}, RetryPolicy{
		MaxAttempts: 3,
		OnExhausted: func(err error) { atomic.AddInt32(&exhausted, 1) },
	})

	err := chat.Open(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)

	// ровно три попытки, четвертой не будет
	_, _, messages := backend.calls()
	assert.Equal(t, 3, messages)
	assert.Equal(t, int32(1), atomic.LoadInt32(&exhausted))
}

func TestChatOpenRecoversWithinBudget(t *testing.T) {
	roomID := uuid.New()
	backend := &fakeBackend{
		messagesFails: 2,
		messagesErr:   errors.New("boom"),
		messages:      []models.RoomMessage{chatMessage(roomID, uuid.New(), "привет")},
	}

	chat := newTestChat(backend, roomID, models.User{ID: uuid.New()})
	defer chat.Close()

	require.NoError(t, chat.Open(context.Background()))
	require.Len(t, chat.Messages(), 1)

	_, _, messages := backend.calls()
	assert.Equal(t, 3, messages)
}

func TestChatAppendsIncoming(t *testing.T) {
	roomID := uuid.New()
	viewer := models.User{ID: uuid.New()}
	backend := &fakeBackend{}

	var notified int32
	chat := newTestChat(backend, roomID, viewer)
	chat.OnMessage = func(models.RoomMessage) { atomic.AddInt32(&notified, 1) }
	defer chat.Close()
	require.NoError(t, chat.Open(context.Background()))

	msg := chatMessage(roomID, viewer.ID, "Hello")
	backend.lastSub().Emit(messageEvent(t, msg))

	require.Eventually(t, func() bool {
		return len(chat.Messages()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Hello", chat.Messages()[0].Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&notified))
}

func TestChatDropsDuplicateDelivery(t *testing.T) {
	roomID := uuid.New()
	backend := &fakeBackend{}
	chat := newTestChat(backend, roomID, models.User{ID: uuid.New()})
	defer chat.Close()
	require.NoError(t, chat.Open(context.Background()))

	msg := chatMessage(roomID, uuid.New(), "один раз")
	evt := messageEvent(t, msg)
	backend.lastSub().Emit(evt)
	backend.lastSub().Emit(evt)

	require.Eventually(t, func() bool {
		return len(chat.Messages()) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, chat.Messages(), 1)
}

func TestChatIgnoresNonInsert(t *testing.T) {
	roomID := uuid.New()
	backend := &fakeBackend{}
	chat := newTestChat(backend, roomID, models.User{ID: uuid.New()})
	defer chat.Close()
	require.NoError(t, chat.Open(context.Background()))

	msg := chatMessage(roomID, uuid.New(), "правка")
	evt := messageEvent(t, msg)
	evt.Type = realtime.EventUpdate
	backend.lastSub().Emit(evt)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, chat.Messages())
}

func TestChatSenderLabel(t *testing.T) {
	viewer := models.User{ID: uuid.MustParse("11111111-2222-3333-4444-555555555555")}
	chat := newTestChat(&fakeBackend{}, uuid.New(), viewer)

	assert.Equal(t, "You", chat.SenderLabel(viewer.ID))

	other := uuid.MustParse("abcdef00-0000-0000-0000-000000000000")
	assert.Equal(t, "User abcd", chat.SenderLabel(other))
}

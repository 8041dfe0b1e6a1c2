package client

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

// Chat — проекция лога сообщений одной комнаты. Только добавление:
// события вставляют ровно одно сообщение в порядке прихода, повторная
// доставка отсеивается по id.
type Chat struct {
	backend Backend
	roomID  uuid.UUID
	viewer  models.User
	retry   RetryPolicy

	// OnMessage, если задан, зовется на каждое добавленное сообщение
	OnMessage func(models.RoomMessage)

	mu       sync.RWMutex
	messages []models.RoomMessage
	seen     map[uuid.UUID]struct{}
	sub      *realtime.Subscription
	closed   bool
}

func NewChat(backend Backend, roomID uuid.UUID, viewer models.User, retry RetryPolicy) *Chat {
	return &Chat{
		backend: backend,
		roomID:  roomID,
		viewer:  viewer,
		retry:   retry,
		seen:    make(map[uuid.UUID]struct{}),
	}
}

// Open грузит историю с ограниченным числом попыток и открывает ленту.
// Исчерпание попыток — терминальная ошибка, дальше не повторяем.
func (c *Chat) Open(ctx context.Context) error {
	var loaded []models.RoomMessage
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		messages, err := c.backend.Messages(ctx, c.roomID)
		if err != nil {
			return err
		}
		loaded = messages
		return nil
	})
	if err != nil {
		return &FetchError{Op: "messages", Err: err}
	}

	c.mu.Lock()
	c.messages = loaded
	c.seen = make(map[uuid.UUID]struct{}, len(loaded))
	for _, msg := range loaded {
		c.seen[msg.ID] = struct{}{}
	}
	c.mu.Unlock()

	sub, err := c.backend.Subscribe(realtime.TableMessages, realtime.Filter{
		Column: "room_id",
		Value:  c.roomID.String(),
	})
	if err != nil {
		return &FetchError{Op: "messages feed", Err: err}
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	c.sub = sub
	c.mu.Unlock()

	go c.watch(sub)
	return nil
}

// Send отправляет обрезанный текст. Пустой текст отклоняется локально;
// при ошибке бэкенда текст остается у вызывающего для повтора.
func (c *Chat) Send(ctx context.Context, text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyMessage
	}

	if err := c.backend.SendMessage(ctx, c.roomID, c.viewer.ID, trimmed); err != nil {
		return &WriteError{Op: "message", Err: err}
	}
	return nil
}

// Messages возвращает копию лога в хронологическом порядке
func (c *Chat) Messages() []models.RoomMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	messages := make([]models.RoomMessage, len(c.messages))
	copy(messages, c.messages)
	return messages
}

// SenderLabel — "You" для своих сообщений, усеченный id для чужих;
// профили других пользователей не запрашиваются
func (c *Chat) SenderLabel(senderID uuid.UUID) string {
	if senderID == c.viewer.ID {
		return "You"
	}
	return "User " + senderID.String()[:4]
}

// Close закрывает ленту; можно звать повторно
func (c *Chat) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
}

func (c *Chat) watch(sub *realtime.Subscription) {
	for evt := range sub.C() {
		if evt.Type != realtime.EventInsert {
			continue
		}

		var msg models.RoomMessage
		if err := json.Unmarshal(evt.Record, &msg); err != nil {
			log.Printf("bad message record in event: %v", err)
			continue
		}

		c.append(msg)
	}
}

func (c *Chat) append(msg models.RoomMessage) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, dup := c.seen[msg.ID]; dup {
		c.mu.Unlock()
		return
	}
	c.seen[msg.ID] = struct{}{}
	c.messages = append(c.messages, msg)
	onMessage := c.OnMessage
	c.mu.Unlock()

	if onMessage != nil {
		onMessage(msg)
	}
}

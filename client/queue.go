package client

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/thereayou/ephroom/internal/models"
	"github.com/thereayou/ephroom/internal/realtime"
)

// Queue — проекция очереди одной комнаты. Любое событие ленты вызывает
// полный перечит вместо точечных правок; позиция выводится из порядка
// requested_at, а не хранится.
type Queue struct {
	backend Backend
	roomID  uuid.UUID

	mu      sync.RWMutex
	entries []models.QueueEntry
	sub     *realtime.Subscription
	closed  bool
}

func NewQueue(backend Backend, roomID uuid.UUID) *Queue {
	return &Queue{backend: backend, roomID: roomID}
}

// Open загружает очередь и открывает ленту изменений
func (q *Queue) Open(ctx context.Context) error {
	if err := q.Refresh(ctx); err != nil {
		return err
	}

	sub, err := q.backend.Subscribe(realtime.TableQueue, realtime.Filter{
		Column: "room_id",
		Value:  q.roomID.String(),
	})
	if err != nil {
		return &FetchError{Op: "queue feed", Err: err}
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	q.sub = sub
	q.mu.Unlock()

	go q.watch(sub)
	return nil
}

// Refresh перечитывает очередь целиком и упорядочивает по времени заявки
func (q *Queue) Refresh(ctx context.Context) error {
	entries, err := q.backend.Queue(ctx, q.roomID)
	if err != nil {
		return &FetchError{Op: "queue", Err: err}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RequestedAt.Before(entries[j].RequestedAt)
	})

	q.mu.Lock()
	q.entries = entries
	q.mu.Unlock()
	return nil
}

// Join ставит пользователя в очередь. Повторная попытка — ErrAlreadyQueued,
// одинаково для локальной проверки и для конфликта уникальности на бэкенде.
func (q *Queue) Join(ctx context.Context, userID uuid.UUID) error {
	if q.Position(userID) > 0 {
		return ErrAlreadyQueued
	}

	if err := q.backend.JoinQueue(ctx, q.roomID, userID); err != nil {
		if err == ErrConflict {
			return ErrAlreadyQueued
		}
		return &WriteError{Op: "join queue", Err: err}
	}
	return nil
}

// Leave убирает пользователя из очереди; выход без записи — no-op
func (q *Queue) Leave(ctx context.Context, userID uuid.UUID) error {
	if err := q.backend.LeaveQueue(ctx, q.roomID, userID); err != nil {
		return &WriteError{Op: "leave queue", Err: err}
	}
	return nil
}

// Position — место пользователя, начиная с 1; 0 — не в очереди
func (q *Queue) Position(userID uuid.UUID) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for i, entry := range q.entries {
		if entry.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// Entries возвращает копию очереди в порядке заявок
func (q *Queue) Entries() []models.QueueEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	entries := make([]models.QueueEntry, len(q.entries))
	copy(entries, q.entries)
	return entries
}

// Close закрывает ленту; можно звать повторно
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	if q.sub != nil {
		q.sub.Unsubscribe()
		q.sub = nil
	}
}

func (q *Queue) watch(sub *realtime.Subscription) {
	for range sub.C() {
		if err := q.Refresh(context.Background()); err != nil {
			log.Printf("queue refresh failed: %v", err)
		}
	}
}

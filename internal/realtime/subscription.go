package realtime

import (
	"sync"

	"github.com/google/uuid"
)

const subscriptionBuffer = 64

// Subscription — живая лента изменений одной таблицы с опциональным фильтром.
// Unsubscribe можно звать сколько угодно раз.
type Subscription struct {
	ID     uuid.UUID
	Table  string
	Filter Filter

	mu     sync.Mutex
	ch     chan Event
	closed bool
	cancel func(*Subscription)
}

// NewSubscription создает подписку; cancel (может быть nil) вызывается
// при первом Unsubscribe, после закрытия канала.
func NewSubscription(table string, filter Filter, cancel func(*Subscription)) *Subscription {
	return &Subscription{
		ID:     uuid.New(),
		Table:  table,
		Filter: filter,
		ch:     make(chan Event, subscriptionBuffer),
		cancel: cancel,
	}
}

// C — канал доставки. Закрывается при Unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Emit доставляет событие, не блокируясь: медленный потребитель теряет события.
// После Unsubscribe — тихий no-op.
func (s *Subscription) Emit(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- evt:
	default:
	}
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.ch)
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel(s)
	}
}

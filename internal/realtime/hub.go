package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const feedChannelPrefix = "feed:"

// Hub — реестр подписок по таблицам. Publish уходит через Redis pub/sub,
// чтобы изменения видели все инстансы; без брокера события замыкаются локально.
type Hub struct {
	broker *redis.Client

	dispatch chan Event

	mu   sync.RWMutex
	subs map[string]map[uuid.UUID]*Subscription

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub создает hub; broker может быть nil (локальная доставка).
func NewHub(broker *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		broker:   broker,
		dispatch: make(chan Event, 256),
		subs:     make(map[string]map[uuid.UUID]*Subscription),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Run крутит цикл доставки до Stop
func (h *Hub) Run() {
	if h.broker != nil {
		go h.consumeBroker()
	}

	for {
		select {
		case <-h.ctx.Done():
			return

		case evt := <-h.dispatch:
			h.deliver(evt)
		}
	}
}

// Stop останавливает hub и закрывает все подписки
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	remaining := make([]*Subscription, 0)
	for _, byID := range h.subs {
		for _, sub := range byID {
			remaining = append(remaining, sub)
		}
	}
	h.subs = make(map[string]map[uuid.UUID]*Subscription)
	h.mu.Unlock()

	for _, sub := range remaining {
		sub.Unsubscribe()
	}
}

// Subscribe открывает ленту изменений таблицы с фильтром
func (h *Hub) Subscribe(table string, filter Filter) *Subscription {
	sub := NewSubscription(table, filter, h.remove)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[table]; !ok {
		h.subs[table] = make(map[uuid.UUID]*Subscription)
	}
	h.subs[table][sub.ID] = sub

	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if byID, ok := h.subs[sub.Table]; ok {
		delete(byID, sub.ID)
		if len(byID) == 0 {
			delete(h.subs, sub.Table)
		}
	}
}

// Publish рассылает событие подписчикам всех инстансов
func (h *Hub) Publish(evt Event) {
	if h.broker != nil {
		payload, err := json.Marshal(evt)
		if err != nil {
			log.Printf("failed to marshal event: %v", err)
			return
		}
		if err := h.broker.Publish(h.ctx, feedChannelPrefix+evt.Table, payload).Err(); err != nil {
			log.Printf("failed to publish event to broker: %v", err)
		}
		return
	}

	select {
	case h.dispatch <- evt:
	case <-h.ctx.Done():
	}
}

func (h *Hub) consumeBroker() {
	pubsub := h.broker.PSubscribe(h.ctx, feedChannelPrefix+"*")
	defer pubsub.Close()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				log.Printf("bad event payload on %s: %v", msg.Channel, err)
				continue
			}

			select {
			case h.dispatch <- evt:
			case <-h.ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) deliver(evt Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[evt.Table] {
		if sub.Filter.Matches(evt.Keys) {
			sub.Emit(evt)
		}
	}
}

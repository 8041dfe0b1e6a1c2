package rest

import (
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/thereayou/ephroom/internal/realtime"
	"github.com/thereayou/ephroom/internal/ws"
)

// feed — одно websocket-соединение с мультиплексированием подписок.
// Обрыв соединения закрывает все подписки; переподключение — забота вызывающего.
type feed struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	mu     sync.Mutex
	subs   map[uuid.UUID]*realtime.Subscription
	closed bool
}

func dialFeed(baseURL, token string) (*feed, error) {
	wsURL, err := websocketURL(baseURL, token)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, err
	}

	f := &feed{
		conn: conn,
		subs: make(map[uuid.UUID]*realtime.Subscription),
	}
	go f.readLoop()
	return f, nil
}

func websocketURL(baseURL, token string) (string, error) {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		baseURL = "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		baseURL = "ws://" + strings.TrimPrefix(baseURL, "http://")
	default:
		return "", errors.New("unsupported server url scheme")
	}
	return strings.TrimRight(baseURL, "/") + "/ws?token=" + token, nil
}

func (f *feed) subscribe(table string, filter realtime.Filter) (*realtime.Subscription, error) {
	sub := realtime.NewSubscription(table, filter, f.remove)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, errors.New("feed is closed")
	}
	f.subs[sub.ID] = sub
	f.mu.Unlock()

	err := f.send(ws.Frame{Action: "subscribe", Table: table, Filter: filter.String()})
	if err != nil {
		f.mu.Lock()
		delete(f.subs, sub.ID)
		f.mu.Unlock()
		return nil, err
	}
	return sub, nil
}

func (f *feed) remove(sub *realtime.Subscription) {
	f.mu.Lock()
	delete(f.subs, sub.ID)
	closed := f.closed
	f.mu.Unlock()

	if !closed {
		// ошибки отписки не важны: соединение могло уже умереть
		_ = f.send(ws.Frame{Action: "unsubscribe", Table: sub.Table, Filter: sub.Filter.String()})
	}
}

func (f *feed) send(frame ws.Frame) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	return f.conn.WriteJSON(frame)
}

func (f *feed) readLoop() {
	for {
		var evt realtime.Event
		if err := f.conn.ReadJSON(&evt); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("feed connection lost: %v", err)
			}
			f.shutdown()
			return
		}
		f.dispatch(evt)
	}
}

func (f *feed) dispatch(evt realtime.Event) {
	f.mu.Lock()
	matched := make([]*realtime.Subscription, 0)
	for _, sub := range f.subs {
		if sub.Table == evt.Table && sub.Filter.Matches(evt.Keys) {
			matched = append(matched, sub)
		}
	}
	f.mu.Unlock()

	for _, sub := range matched {
		sub.Emit(evt)
	}
}

func (f *feed) shutdown() {
	f.mu.Lock()
	f.closed = true
	remaining := make([]*realtime.Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		remaining = append(remaining, sub)
	}
	f.subs = make(map[uuid.UUID]*realtime.Subscription)
	f.mu.Unlock()

	for _, sub := range remaining {
		sub.Unsubscribe()
	}
}

func (f *feed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *feed) close() {
	f.conn.Close()
}

package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/thereayou/ephroom/internal/realtime"
)

const (
	writeWait = 10 * time.Second

	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4 * 1024
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// Frame — команда подписки от клиента
type Frame struct {
	Action string `json:"action"`
	Table  string `json:"table"`
	Filter string `json:"filter,omitempty"`
}

// Client держит websocket-соединение и его подписки на ленты изменений.
// Исходящие кадры — realtime.Event как есть.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	hub  *realtime.Hub
	done chan struct{}

	mu   sync.Mutex
	subs map[string]*realtime.Subscription
}

func NewClient(hub *realtime.Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		hub:    hub,
		done:   make(chan struct{}),
		subs:   make(map[string]*realtime.Subscription),
	}
}

// ReadPump читает команды подписки до закрытия соединения
func (c *Client) ReadPump() {
	defer func() {
		c.teardown()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame Frame
		if err := c.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket error: %v", err)
			}
			return
		}

		switch frame.Action {
		case actionSubscribe:
			c.subscribe(frame)

		case actionUnsubscribe:
			c.unsubscribe(frame)

		default:
			log.Printf("unknown frame action: %s", frame.Action)
		}
	}
}

// WritePump пишет события и пинги клиенту
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func subKey(table, filter string) string { return table + "|" + filter }

func (c *Client) subscribe(frame Frame) {
	key := subKey(frame.Table, frame.Filter)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subs[key]; ok {
		return
	}

	sub := c.hub.Subscribe(frame.Table, realtime.ParseFilter(frame.Filter))
	c.subs[key] = sub

	go c.forward(sub)
}

func (c *Client) unsubscribe(frame Frame) {
	key := subKey(frame.Table, frame.Filter)

	c.mu.Lock()
	sub, ok := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()

	if ok {
		sub.Unsubscribe()
	}
}

func (c *Client) forward(sub *realtime.Subscription) {
	for evt := range sub.C() {
		data, err := json.Marshal(evt)
		if err != nil {
			continue
		}

		select {
		case <-c.done:
			return
		default:
		}

		select {
		case c.Send <- data:
		default:
			log.Printf("client %s send channel full, dropping event", c.ID)
		}
	}
}

func (c *Client) teardown() {
	c.mu.Lock()
	subs := c.subs
	c.subs = make(map[string]*realtime.Subscription)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	close(c.done)
}

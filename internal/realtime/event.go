package realtime

import (
	"encoding/json"
	"strings"
	"time"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

const (
	TableRooms    = "rooms"
	TableQueue    = "room_queue"
	TableMessages = "room_messages"
)

// Event — построчное изменение таблицы. Record содержит запись целиком,
// Keys — колонки, по которым маршрутизируются подписки.
type Event struct {
	Type      EventType         `json:"type"`
	Table     string            `json:"table"`
	Record    json.RawMessage   `json:"record"`
	Keys      map[string]string `json:"keys,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func NewEvent(typ EventType, table string, record interface{}, keys map[string]string) (Event, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      typ,
		Table:     table,
		Record:    raw,
		Keys:      keys,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Filter ограничивает подписку одной колонкой, синтаксис "column=eq.value".
// Пустой фильтр пропускает все события таблицы.
type Filter struct {
	Column string `json:"column,omitempty"`
	Value  string `json:"value,omitempty"`
}

func (f Filter) Matches(keys map[string]string) bool {
	if f.Column == "" {
		return true
	}
	return keys[f.Column] == f.Value
}

func (f Filter) String() string {
	if f.Column == "" {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

func ParseFilter(s string) Filter {
	if s == "" {
		return Filter{}
	}
	column, rest, ok := strings.Cut(s, "=eq.")
	if !ok {
		return Filter{}
	}
	return Filter{Column: column, Value: rest}
}

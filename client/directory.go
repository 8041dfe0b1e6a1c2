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

const (
	FilterAll       = "all"
	FilterAvailable = "available"
	FilterOccupied  = "occupied"
)

// Directory — проекция комнат выбранной школы, сверяемая с лентой изменений.
// Событие несет запись целиком и заменяет локальную по id.
type Directory struct {
	backend Backend

	mu       sync.RWMutex
	schoolID uuid.UUID
	rooms    []models.Room
	sub      *realtime.Subscription
	gen      int
}

func NewDirectory(backend Backend) *Directory {
	return &Directory{backend: backend}
}

// Select переключает школу: старая подписка закрывается до открытия новой,
// результаты устаревших запросов отбрасываются по номеру поколения.
func (d *Directory) Select(ctx context.Context, schoolID uuid.UUID) error {
	d.mu.Lock()
	if d.sub != nil {
		d.sub.Unsubscribe()
		d.sub = nil
	}
	d.gen++
	gen := d.gen
	d.schoolID = schoolID
	d.rooms = nil
	d.mu.Unlock()

	rooms, err := d.backend.Rooms(ctx, schoolID)
	if err != nil {
		return &FetchError{Op: "rooms", Err: err}
	}

	sub, err := d.backend.Subscribe(realtime.TableRooms, realtime.Filter{
		Column: "school_id",
		Value:  schoolID.String(),
	})
	if err != nil {
		return &FetchError{Op: "rooms feed", Err: err}
	}

	d.mu.Lock()
	if gen != d.gen {
		// школу уже переключили, результат не наш
		d.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	d.rooms = rooms
	d.sub = sub
	d.mu.Unlock()

	go d.watch(sub, gen)
	return nil
}

// Close останавливает синхронизацию; можно звать повторно
func (d *Directory) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sub != nil {
		d.sub.Unsubscribe()
		d.sub = nil
	}
	d.gen++
	d.rooms = nil
}

// SchoolID возвращает выбранную школу (uuid.Nil, если не выбрана)
func (d *Directory) SchoolID() uuid.UUID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.schoolID
}

// Rooms возвращает копию проекции
func (d *Directory) Rooms() []models.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rooms := make([]models.Room, len(d.rooms))
	copy(rooms, d.rooms)
	return rooms
}

// Filter отбирает комнаты по подстроке имени/описания и статусу занятости
func (d *Directory) Filter(search, status string) []models.Room {
	search = strings.ToLower(search)

	matches := func(room models.Room) bool {
		if search != "" &&
			!strings.Contains(strings.ToLower(room.Name), search) &&
			!strings.Contains(strings.ToLower(room.Description), search) {
			return false
		}
		switch status {
		case FilterAvailable:
			return !room.IsOccupied
		case FilterOccupied:
			return room.IsOccupied
		default:
			return true
		}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	filtered := make([]models.Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		if matches(room) {
			filtered = append(filtered, room)
		}
	}
	return filtered
}

func (d *Directory) watch(sub *realtime.Subscription, gen int) {
	for evt := range sub.C() {
		d.apply(evt, gen)
	}
}

func (d *Directory) apply(evt realtime.Event, gen int) {
	var room models.Room
	if err := json.Unmarshal(evt.Record, &room); err != nil {
		log.Printf("bad room record in event: %v", err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		return
	}
	d.rooms = roomReducer(d.rooms, room)
}

// roomReducer заменяет запись с совпадающим id; незнакомые id игнорируются
func roomReducer(rooms []models.Room, updated models.Room) []models.Room {
	next := make([]models.Room, len(rooms))
	for i, room := range rooms {
		if room.ID == updated.ID {
			next[i] = updated
		} else {
			next[i] = room
		}
	}
	return next
}

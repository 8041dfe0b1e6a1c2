package client

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/ephroom/internal/models"
)

// Status — производная оценка занятости комнаты
type Status string

const (
	StatusFree     Status = "free"
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

const (
	warningAfter  = 60 * time.Minute
	criticalAfter = 120 * time.Minute
)

// OccupiedMinutes — сколько полных минут комната занята
func OccupiedMinutes(room models.Room, now time.Time) int {
	if room.OccupiedSince == nil {
		return 0
	}
	return int(now.Sub(*room.OccupiedSince) / time.Minute)
}

// RoomStatus раскладывает занятость по фиксированным порогам 60/120 минут
func RoomStatus(room models.Room, now time.Time) Status {
	if !room.IsOccupied {
		return StatusFree
	}
	if room.OccupiedSince == nil {
		return StatusNormal
	}

	since := now.Sub(*room.OccupiedSince)
	switch {
	case since > criticalAfter:
		return StatusCritical
	case since > warningAfter:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// NextOccupancy — логическое отрицание текущей занятости
func NextOccupancy(room models.Room, userID uuid.UUID, now time.Time) OccupancyUpdate {
	if room.IsOccupied {
		return OccupancyUpdate{}
	}
	return OccupancyUpdate{
		IsOccupied:    true,
		OccupiedBy:    &userID,
		OccupiedSince: &now,
	}
}

// Occupancy переключает комнаты между свободна/занята
type Occupancy struct {
	backend Backend
	session *Session
}

func NewOccupancy(backend Backend, session *Session) *Occupancy {
	return &Occupancy{backend: backend, session: session}
}

// Toggle пишет новое состояние одной записью по id комнаты.
// Локальная проекция не трогается: ее обновит эхо из ленты изменений.
func (o *Occupancy) Toggle(ctx context.Context, room models.Room) error {
	user := o.session.Current()
	if user == nil {
		return ErrAuthRequired
	}

	upd := NextOccupancy(room, user.ID, time.Now().UTC())
	if err := o.backend.UpdateOccupancy(ctx, room.ID, upd); err != nil {
		return &WriteError{Op: "room status", Err: err}
	}
	return nil
}

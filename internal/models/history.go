package models

import (
	"github.com/google/uuid"
	"time"
)

const (
	HistoryOccupy = "occupy"
	HistoryVacate = "vacate"
)

// RoomHistory — журнал занятий и освобождений комнаты.
type RoomHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID    uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Action    string    `gorm:"not null;check:action IN ('occupy','vacate')" json:"action"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (RoomHistory) TableName() string { return "room_history" }

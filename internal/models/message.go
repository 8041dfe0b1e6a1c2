package models

import (
	"github.com/google/uuid"
	"time"
)

// RoomMessage — сообщение чата комнаты. Только добавление, без правок и удалений.
type RoomMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID   uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`
	SenderID uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Message  string    `gorm:"not null" json:"message"`
	SentAt   time.Time `gorm:"not null" json:"sent_at"`
}

func (RoomMessage) TableName() string { return "room_messages" }

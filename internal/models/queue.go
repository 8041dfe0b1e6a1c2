package models

import (
	"github.com/google/uuid"
	"time"
)

// QueueEntry — место в очереди ожидания комнаты.
// Не больше одной записи на пару (room_id, user_id).
type QueueEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_queue_room_user" json:"room_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_room_queue_room_user" json:"user_id"`
	Position    int       `gorm:"not null" json:"position"`
	RequestedAt time.Time `gorm:"not null" json:"requested_at"`
}

func (QueueEntry) TableName() string { return "room_queue" }

package models

import (
	"github.com/google/uuid"
	"time"
)

// Profile хранит последнюю выбранную школу пользователя. ID совпадает с User.ID.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID  *uuid.UUID `gorm:"type:uuid" json:"school_id"`
	UpdatedAt time.Time  `json:"updated_at"`
}

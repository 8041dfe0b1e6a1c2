package models

import (
	"github.com/google/uuid"
	"time"
)

// Room — комната школы. Инвариант: IsOccupied == (OccupiedSince != nil && OccupiedBy != nil).
type Room struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Type          string     `gorm:"not null" json:"type"`
	Description   string     `json:"description"`
	IsOccupied    bool       `gorm:"not null;default:false" json:"is_occupied"`
	OccupiedSince *time.Time `json:"occupied_since"`
	OccupiedBy    *uuid.UUID `gorm:"type:uuid" json:"occupied_by"`
	SchoolID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"school_id"`
}

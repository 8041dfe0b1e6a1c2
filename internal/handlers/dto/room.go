package dto

import (
	"github.com/google/uuid"
	"time"
)

// OccupancyUpdate — целевое состояние занятости, посчитанное клиентом.
// Сервер проверяет только согласованность полей.
type OccupancyUpdate struct {
	IsOccupied    bool       `json:"is_occupied"`
	OccupiedBy    *uuid.UUID `json:"occupied_by"`
	OccupiedSince *time.Time `json:"occupied_since"`
}

// Valid — инвариант занятости: комната занята тогда и только тогда,
// когда известны оба поля — кем и с какого момента
func (u OccupancyUpdate) Valid() bool {
	if u.IsOccupied {
		return u.OccupiedBy != nil && u.OccupiedSince != nil
	}
	return u.OccupiedBy == nil && u.OccupiedSince == nil
}

type UpdateProfileRequest struct {
	SchoolID *uuid.UUID `json:"school_id"`
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/ephroom/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreateRoom(room *models.Room) error {
	return d.db.Create(room).Error
}

func (d *Database) GetRoom(id string) (*models.Room, error) {
	var room models.Room
	if err := d.db.First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomsBySchool возвращает комнаты школы, отсортированные по имени
func (d *Database) GetRoomsBySchool(schoolID string) ([]models.Room, error) {
	var rooms []models.Room
	err := d.db.
		Where("school_id = ?", schoolID).
		Order("name").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

// UpdateOccupancy записывает новое состояние занятости одной записью по id.
// Никакого compare-and-swap: побеждает последняя запись, историю пишем в той же транзакции.
func (d *Database) UpdateOccupancy(roomID uuid.UUID, occupied bool, by *uuid.UUID, since *time.Time, actor uuid.UUID) (*models.Room, error) {
	var room models.Room

	err := d.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"is_occupied":    occupied,
			"occupied_by":    by,
			"occupied_since": since,
		}

		if err := tx.Model(&models.Room{}).Where("id = ?", roomID).Updates(updates).Error; err != nil {
			return err
		}

		action := models.HistoryVacate
		if occupied {
			action = models.HistoryOccupy
		}

		entry := &models.RoomHistory{
			RoomID:    roomID,
			UserID:    actor,
			Action:    action,
			Timestamp: time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}

		return tx.First(&room, "id = ?", roomID).Error
	})
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (d *Database) GetRoomHistory(roomID string, limit int) ([]models.RoomHistory, error) {
	var entries []models.RoomHistory
	err := d.db.
		Where("room_id = ?", roomID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/ephroom/internal/models"
	"gorm.io/gorm"
)

// GetQueue возвращает очередь комнаты по позициям
func (d *Database) GetQueue(roomID string) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := d.db.
		Where("room_id = ?", roomID).
		Order("position").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// JoinQueue вставляет запись с очередной плотной позицией.
// Дубликат (room_id, user_id) приходит как gorm.ErrDuplicatedKey.
func (d *Database) JoinQueue(roomID, userID uuid.UUID) (*models.QueueEntry, error) {
	entry := &models.QueueEntry{
		RoomID:      roomID,
		UserID:      userID,
		RequestedAt: time.Now().UTC(),
	}

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var maxPos int
		err := tx.Model(&models.QueueEntry{}).
			Where("room_id = ?", roomID).
			Select("COALESCE(MAX(position), 0)").
			Scan(&maxPos).Error
		if err != nil {
			return err
		}

		entry.Position = maxPos + 1
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// LeaveQueue удаляет запись пользователя и уплотняет оставшиеся позиции.
// Если записи нет, возвращает (nil, nil) — выход из чужой очереди не ошибка.
func (d *Database) LeaveQueue(roomID, userID uuid.UUID) (*models.QueueEntry, error) {
	var removed *models.QueueEntry

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var entry models.QueueEntry
		err := tx.Where("room_id = ? AND user_id = ?", roomID, userID).First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}

		err = tx.Model(&models.QueueEntry{}).
			Where("room_id = ? AND position > ?", roomID, entry.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
		if err != nil {
			return err
		}

		removed = &entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	return removed, nil
}

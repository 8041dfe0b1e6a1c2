package database

import "github.com/thereayou/ephroom/internal/models"

func (d *Database) SaveMessage(message *models.RoomMessage) error {
	return d.db.Create(message).Error
}

// GetRoomMessages возвращает сообщения комнаты от старых к новым
func (d *Database) GetRoomMessages(roomID string) ([]models.RoomMessage, error) {
	var messages []models.RoomMessage
	err := d.db.
		Where("room_id = ?", roomID).
		Order("sent_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

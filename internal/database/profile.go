package database

import (
	"github.com/thereayou/ephroom/internal/models"
	"gorm.io/gorm/clause"
)

func (d *Database) GetProfile(id string) (*models.Profile, error) {
	var profile models.Profile
	if err := d.db.First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile создает или обновляет предпочтение школы пользователя
func (d *Database) UpsertProfile(profile *models.Profile) error {
	return d.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"school_id", "updated_at"}),
	}).Create(profile).Error
}

package database

import (
	"errors"

	"github.com/thereayou/ephroom/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func (d *Database) Connect(dsn string) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is not set")
	}

	// TranslateError нужен, чтобы нарушение уникального индекса
	// приходило как gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return err
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.School{},
		&models.Profile{},
		&models.Room{},
		&models.QueueEntry{},
		&models.RoomMessage{},
		&models.RoomHistory{},
	)
	if err != nil {
		return err
	}

	d.db = db

	return nil
}

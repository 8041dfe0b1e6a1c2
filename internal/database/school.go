package database

import "github.com/thereayou/ephroom/internal/models"

// GetSchools возвращает все школы по алфавиту
func (d *Database) GetSchools() ([]models.School, error) {
	var schools []models.School
	if err := d.db.Order("name").Find(&schools).Error; err != nil {
		return nil, err
	}
	return schools, nil
}

func (d *Database) GetSchool(id string) (*models.School, error) {
	var school models.School
	if err := d.db.First(&school, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &school, nil
}

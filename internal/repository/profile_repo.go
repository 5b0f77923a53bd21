package repository

import (
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.UserProfile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByUserID(userID uint) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) Update(p *models.UserProfile) error {
	return r.db.Save(p).Error
}

package repository

import (
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

// ProviderRepository reads the survey-provider catalog. The catalog is seeded
// at startup and treated as reference data; there is no runtime mutation path.
type ProviderRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) *ProviderRepository {
	return &ProviderRepository{db: db}
}

func (r *ProviderRepository) GetByID(id string) (*models.SurveyProvider, error) {
	var p models.SurveyProvider
	err := r.db.First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProviderRepository) ListActive() ([]models.SurveyProvider, error) {
	var list []models.SurveyProvider
	err := r.db.Where("is_active = ?", true).Order("id").Find(&list).Error
	return list, err
}

package repository

import (
	"errors"

	"surveyhub/internal/models"

	"gorm.io/gorm"
)

type CompletedSurveyRepository struct {
	db *gorm.DB
}

func NewCompletedSurveyRepository(db *gorm.DB) *CompletedSurveyRepository {
	return &CompletedSurveyRepository{db: db}
}

func (r *CompletedSurveyRepository) Create(s *models.CompletedSurvey) error {
	return r.db.Create(s).Error
}

func (r *CompletedSurveyRepository) Exists(userID uint, surveyID string) (bool, error) {
	var s models.CompletedSurvey
	err := r.db.Where("user_id = ? AND survey_id = ?", userID, surveyID).First(&s).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func (r *CompletedSurveyRepository) ListByUserID(userID uint, limit, offset int) ([]models.CompletedSurvey, error) {
	var list []models.CompletedSurvey
	err := r.db.Where("user_id = ?", userID).Order("completed_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// SurveyIDsByUserID returns every survey id already recorded for the user,
// the aggregation service's exclusion set.
func (r *CompletedSurveyRepository) SurveyIDsByUserID(userID uint) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.CompletedSurvey{}).Where("user_id = ?", userID).Pluck("survey_id", &ids).Error
	return ids, err
}

func (r *CompletedSurveyRepository) CountByUserID(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.CompletedSurvey{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

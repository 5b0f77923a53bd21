package repository

import (
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

type ProviderAccountRepository struct {
	db *gorm.DB
}

func NewProviderAccountRepository(db *gorm.DB) *ProviderAccountRepository {
	return &ProviderAccountRepository{db: db}
}

func (r *ProviderAccountRepository) Create(a *models.ProviderAccount) error {
	return r.db.Create(a).Error
}

func (r *ProviderAccountRepository) GetByUserAndProvider(userID uint, providerID string) (*models.ProviderAccount, error) {
	var a models.ProviderAccount
	err := r.db.Where("user_id = ? AND provider_id = ?", userID, providerID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetConnectedByExternalID resolves a webhook respondent id to the connected
// account it belongs to.
func (r *ProviderAccountRepository) GetConnectedByExternalID(providerID, externalUserID string) (*models.ProviderAccount, error) {
	var a models.ProviderAccount
	err := r.db.
		Where("provider_id = ? AND external_user_id = ? AND is_connected = ?", providerID, externalUserID, true).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ProviderAccountRepository) ListByUserID(userID uint) ([]models.ProviderAccount, error) {
	var list []models.ProviderAccount
	err := r.db.Where("user_id = ?", userID).Find(&list).Error
	return list, err
}

func (r *ProviderAccountRepository) ListConnectedByUserID(userID uint) ([]models.ProviderAccount, error) {
	var list []models.ProviderAccount
	err := r.db.Where("user_id = ? AND is_connected = ?", userID, true).Find(&list).Error
	return list, err
}

func (r *ProviderAccountRepository) Update(a *models.ProviderAccount) error {
	return r.db.Save(a).Error
}

package repository

import (
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(t *models.UserTransaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) ListByUserID(userID uint, limit, offset int) ([]models.UserTransaction, error) {
	var list []models.UserTransaction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

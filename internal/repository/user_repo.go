package repository

import (
	"surveyhub/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetWithRelations loads the user together with profile, connected accounts
// and completed-survey history.
func (r *UserRepository) GetWithRelations(id uint) (*models.User, error) {
	var u models.User
	err := r.db.
		Preload("Profile").
		Preload("ConnectedAccounts").
		Preload("CompletedSurveys").
		First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListActiveWithConnections returns active users that have at least one
// connected provider account, with accounts, history and profile preloaded.
// This is the poller's working set.
func (r *UserRepository) ListActiveWithConnections() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Preload("Profile").
		Preload("ConnectedAccounts").
		Preload("CompletedSurveys").
		Where("is_active = ?", true).
		Where("id IN (?)", r.db.Model(&models.ProviderAccount{}).
			Select("user_id").Where("is_connected = ?", true)).
		Find(&users).Error
	return users, err
}

func (r *UserRepository) Update(u *models.User) error {
	return r.db.Save(u).Error
}

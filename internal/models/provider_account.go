package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProviderAccount links a user to one external survey provider.
// At most one row per (user, provider); disconnecting clears the token but
// keeps the cumulative earnings and completion count.
type ProviderAccount struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	UserID               uint            `gorm:"index:idx_user_provider,unique;not null" json:"user_id"`
	ProviderID           string          `gorm:"index:idx_user_provider,unique;size:50;not null" json:"provider_id"`
	ProviderName         string          `gorm:"size:100;not null" json:"provider_name"`
	UserToken            string          `gorm:"size:512" json:"-"`
	ExternalUserID       string          `gorm:"size:255;index" json:"external_user_id"`
	IsConnected          bool            `gorm:"default:false;index" json:"is_connected"`
	ConnectedAt          time.Time       `json:"connected_at"`
	LastSyncAt           *time.Time      `json:"last_sync_at"`
	EarningsFromProvider decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"earnings_from_provider"`
	SurveysCompleted     int             `gorm:"not null;default:0" json:"surveys_completed"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	DeletedAt            gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ProviderAccount) TableName() string {
	return "provider_accounts"
}

package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SurveyProvider is a catalog entry for one external survey marketplace.
// Effectively static reference data seeded at startup.
type SurveyProvider struct {
	ID             string          `gorm:"primaryKey;size:50" json:"id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	LogoURL        string          `gorm:"size:255" json:"logo_url"`
	Description    string          `gorm:"size:500" json:"description"`
	APIEndpoint    string          `gorm:"size:255" json:"api_endpoint"`
	AuthURL        string          `gorm:"size:255" json:"auth_url"`
	MinPayout      decimal.Decimal `gorm:"type:decimal(10,2)" json:"min_payout"`
	PaymentMethods string          `gorm:"size:255" json:"-"` // comma-joined
	IsActive       bool            `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (SurveyProvider) TableName() string {
	return "survey_providers"
}

func (p *SurveyProvider) PaymentMethodList() []string {
	if p.PaymentMethods == "" {
		return nil
	}
	return strings.Split(p.PaymentMethods, ",")
}

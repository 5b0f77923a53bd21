package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Email           string          `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash    string          `gorm:"size:255;not null" json:"-"`
	TotalEarnings   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_earnings"`
	IsActive        bool            `gorm:"default:true;index" json:"is_active"`
	IsEmailVerified bool            `gorm:"default:false" json:"is_email_verified"`
	LastLoginAt     *time.Time      `json:"last_login_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Profile           *UserProfile      `gorm:"foreignKey:UserID" json:"profile,omitempty"`
	ConnectedAccounts []ProviderAccount `gorm:"foreignKey:UserID" json:"connected_accounts,omitempty"`
	CompletedSurveys  []CompletedSurvey `gorm:"foreignKey:UserID" json:"completed_surveys,omitempty"`
	Transactions      []UserTransaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}

// CompletedSurveyIDs returns the set of survey ids already credited to the user.
func (u *User) CompletedSurveyIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(u.CompletedSurveys))
	for _, s := range u.CompletedSurveys {
		ids[s.SurveyID] = struct{}{}
	}
	return ids
}

// ConnectedAccount returns the account for providerID, or nil.
func (u *User) ConnectedAccount(providerID string) *ProviderAccount {
	for i := range u.ConnectedAccounts {
		if u.ConnectedAccounts[i].ProviderID == providerID {
			return &u.ConnectedAccounts[i]
		}
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompletedSurvey is the immutable record that a user finished one survey and
// was credited. The (user_id, survey_id) unique index is what makes webhook
// redelivery a defined conflict instead of a double credit.
type CompletedSurvey struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"index:idx_user_survey,unique;not null" json:"user_id"`
	SurveyID        string          `gorm:"index:idx_user_survey,unique;size:100;not null" json:"survey_id"`
	ProviderID      string          `gorm:"size:50;not null;index" json:"provider_id"`
	Title           string          `gorm:"size:200;not null" json:"title"`
	Description     string          `gorm:"size:500" json:"description"`
	Reward          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"reward"`
	CompletedAt     time.Time       `json:"completed_at"`
	Status          string          `gorm:"size:50;not null;default:'Completed'" json:"status"` // Completed, Pending, Rejected, Disputed
	DurationMinutes *int            `json:"duration_minutes"`
	Notes           string          `gorm:"size:500" json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CompletedSurvey) TableName() string {
	return "completed_surveys"
}

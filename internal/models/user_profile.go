package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserProfile holds demographic and contact attributes used for survey targeting.
type UserProfile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	FirstName   string     `gorm:"size:100" json:"first_name"`
	LastName    string     `gorm:"size:100" json:"last_name"`
	PhoneNumber string     `gorm:"size:20" json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Country     string     `gorm:"size:50;not null;default:'GB'" json:"country"`
	City        string     `gorm:"size:100" json:"city"`
	PostalCode  string     `gorm:"size:20" json:"postal_code"`

	// Demographics for survey targeting
	Gender           string           `gorm:"size:30" json:"gender"` // Male, Female, Other, PreferNotToSay
	EducationLevel   string           `gorm:"size:50" json:"education_level"`
	EmploymentStatus string           `gorm:"size:50" json:"employment_status"`
	AnnualIncome     *decimal.Decimal `gorm:"type:decimal(10,2)" json:"annual_income"`
	Industry         string           `gorm:"size:100" json:"industry"`

	// Preferences
	ReceiveEmailNotifications bool   `gorm:"default:true" json:"receive_email_notifications"`
	ReceiveSmsNotifications   bool   `gorm:"default:false" json:"receive_sms_notifications"`
	PreferredLanguage         string `gorm:"size:10;default:'en'" json:"preferred_language"`
	TimeZone                  string `gorm:"size:50;default:'GMT'" json:"time_zone"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (p *UserProfile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// Age returns age in years at t, or 0 when DOB is unset.
func (p *UserProfile) Age(t time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	age := t.Year() - p.DateOfBirth.Year()
	if t.YearDay() < p.DateOfBirth.YearDay() {
		age--
	}
	return age
}

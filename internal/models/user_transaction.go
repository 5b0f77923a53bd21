package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserTransaction is an append-only ledger entry. Survey credits, withdrawals,
// bonuses and penalties all land here; amount is positive for credits and
// negative for debits.
type UserTransaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type        string          `gorm:"size:50;not null;index" json:"type"` // Earning, Withdrawal, Bonus, Penalty
	Description string          `gorm:"size:500" json:"description"`
	Status      string          `gorm:"size:50;not null;default:'Completed'" json:"status"` // Pending, Completed, Failed, Cancelled
	Reference   string          `gorm:"size:100;index" json:"reference"`                    // e.g. survey id, withdrawal method
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (UserTransaction) TableName() string {
	return "user_transactions"
}

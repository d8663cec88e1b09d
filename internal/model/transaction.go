package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction is a ledger entry for one credit purchase attempt. Its ID doubles
// as the receipt key on the remote gateway order, which is how a confirmed
// payment is reconciled back to the entry.
type Transaction struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uint            `json:"user_id" gorm:"not null;index"`
	Plan      Plan            `json:"plan" gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Credits   int64           `json:"credits" gorm:"not null"`
	Payment   bool            `json:"payment" gorm:"not null;default:false;index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

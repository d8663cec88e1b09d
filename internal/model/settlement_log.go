package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettlementStatus represents the outcome of a settlement attempt.
type SettlementStatus string

const (
	SettlementStatusSettled  SettlementStatus = "settled"
	SettlementStatusRejected SettlementStatus = "rejected"
)

// SettlementLog records one ConfirmPurchase attempt against a transaction.
// All attempts are logged regardless of outcome.
type SettlementLog struct {
	ID            uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	TransactionID uuid.UUID        `json:"transaction_id" gorm:"type:char(36);not null;index"`
	Status        SettlementStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	ErrorMessage  string           `json:"error_message,omitempty" gorm:"type:text"`
	CreatedAt     time.Time        `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (l *SettlementLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	errs "imagify/internal/errors"
	"imagify/internal/model"
)

// TransactionRepository defines ledger entry persistence operations.
type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	Settle(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create creates a new ledger entry.
func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindByID finds a ledger entry by ID.
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// Settle flips the payment flag and credits the user as one unit. The flag
// update is conditional on payment=false, so of N concurrent settlement
// attempts for the same entry exactly one applies the credit; the rest get
// ErrAlreadySettled. The flag never reverts.
func (r *transactionRepository) Settle(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", id).First(&txn).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Transaction{}).
			Where("id = ? AND payment = ?", id, false).
			Update("payment", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.ErrAlreadySettled
		}

		if err := tx.Model(&model.User{}).
			Where("id = ?", txn.UserID).
			UpdateColumn("credit_balance", gorm.Expr("credit_balance + ?", txn.Credits)).Error; err != nil {
			return err
		}

		txn.Payment = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

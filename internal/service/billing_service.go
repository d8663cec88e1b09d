package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"imagify/internal/cache"
	errs "imagify/internal/errors"
	"imagify/internal/gateway"
	"imagify/internal/model"
	"imagify/internal/repository"
)

// BillingService is the credit settlement engine. It creates ledger entries
// and remote orders, and grants credits exactly once per confirmed payment.
type BillingService interface {
	Plans() []model.PlanDetails
	InitiatePurchase(ctx context.Context, userID uint, planID string) (*gateway.Order, error)
	ConfirmPurchase(ctx context.Context, orderID, paymentID, signature string) error
}

type billingService struct {
	userRepo repository.UserRepository
	txnRepo  repository.TransactionRepository
	logRepo  repository.SettlementLogRepository
	gateway  gateway.Client
	cache    *cache.Client
	currency string
	// Channel for async settlement audit logging
	logChannel chan model.SettlementLog
}

// NewBillingService creates a new billing service.
func NewBillingService(
	userRepo repository.UserRepository,
	txnRepo repository.TransactionRepository,
	logRepo repository.SettlementLogRepository,
	gw gateway.Client,
	cache *cache.Client,
	currency string,
) BillingService {
	service := &billingService{
		userRepo:   userRepo,
		txnRepo:    txnRepo,
		logRepo:    logRepo,
		gateway:    gw,
		cache:      cache,
		currency:   currency,
		logChannel: make(chan model.SettlementLog, 100),
	}

	// Start async log worker
	go service.logWorker(context.Background())

	return service
}

// Plans returns the read-only plan catalog.
func (s *billingService) Plans() []model.PlanDetails {
	return model.Plans()
}

// InitiatePurchase creates a pending ledger entry and a matching remote order.
// Amount and credits always come from the catalog; no credit is granted here.
func (s *billingService) InitiatePurchase(ctx context.Context, userID uint, planID string) (*gateway.Order, error) {
	details, ok := model.LookupPlan(planID)
	if !ok {
		return nil, errs.ErrInvalidPlan
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	txn := &model.Transaction{
		UserID:  userID,
		Plan:    details.Plan,
		Amount:  details.Amount,
		Credits: details.Credits,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, details.Amount, s.currency, txn.ID.String())
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ConfirmPurchase verifies a checkout confirmation and settles the matching
// ledger entry. Safe to retry: a replayed confirmation fails with
// ErrAlreadySettled and never double-credits.
func (s *billingService) ConfirmPurchase(ctx context.Context, orderID, paymentID, signature string) error {
	// Authenticity gate: nothing downstream is trusted without it.
	if !s.gateway.VerifySignature(orderID, paymentID, signature) {
		log.Printf("SECURITY: signature mismatch for order %s payment %s", orderID, paymentID)
		return errs.ErrSignatureMismatch
	}

	order, err := s.gateway.FetchOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != gateway.OrderStatusPaid {
		s.logSettlement(ctx, order.Receipt, model.SettlementStatusRejected, errs.ErrPaymentNotSettled.Error())
		return errs.ErrPaymentNotSettled
	}

	receiptID, err := uuid.Parse(order.Receipt)
	if err != nil {
		s.logSettlement(ctx, order.Receipt, model.SettlementStatusRejected, errs.ErrTransactionNotFound.Error())
		return errs.ErrTransactionNotFound
	}

	txn, err := s.txnRepo.Settle(ctx, receiptID)
	if err != nil {
		switch err {
		case gorm.ErrRecordNotFound:
			s.logSettlement(ctx, order.Receipt, model.SettlementStatusRejected, errs.ErrTransactionNotFound.Error())
			return errs.ErrTransactionNotFound
		case errs.ErrAlreadySettled:
			s.logSettlement(ctx, order.Receipt, model.SettlementStatusRejected, err.Error())
			return err
		default:
			return fmt.Errorf("settle transaction: %w", err)
		}
	}

	// Invalidate cached balance
	_ = s.cache.Delete(ctx, creditsCacheKey(txn.UserID))

	s.logSettlement(ctx, txn.ID.String(), model.SettlementStatusSettled, "")
	return nil
}

// logWorker persists settlement audit logs in batches.
func (s *billingService) logWorker(ctx context.Context) {
	batch := make([]model.SettlementLog, 0, 10)
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-s.logChannel:
			if !ok {
				// Channel closed, flush remaining logs
				if len(batch) > 0 {
					_ = s.logRepo.CreateBatch(ctx, batch)
				}
				return
			}
			batch = append(batch, entry)
			if len(batch) >= 10 {
				_ = s.logRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				_ = s.logRepo.CreateBatch(ctx, batch)
				batch = batch[:0]
			}
		case <-ctx.Done():
			return
		}
	}
}

// logSettlement records a settlement attempt asynchronously.
func (s *billingService) logSettlement(ctx context.Context, receipt string, status model.SettlementStatus, errorMessage string) {
	txnID, err := uuid.Parse(receipt)
	if err != nil {
		txnID = uuid.Nil
	}
	entry := model.SettlementLog{
		TransactionID: txnID,
		Status:        status,
		ErrorMessage:  errorMessage,
	}

	// Send to async log channel (non-blocking)
	select {
	case s.logChannel <- entry:
	default:
		// Channel full, log synchronously as fallback
		_ = s.logRepo.Create(ctx, &entry)
	}
}

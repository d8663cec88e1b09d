package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	errs "imagify/internal/errors"
	"imagify/internal/gateway"
	"imagify/internal/model"
)

// stubSettlementLogRepo discards audit log writes.
type stubSettlementLogRepo struct{}

func (stubSettlementLogRepo) Create(ctx context.Context, log *model.SettlementLog) error {
	return nil
}

func (stubSettlementLogRepo) CreateBatch(ctx context.Context, logs []model.SettlementLog) error {
	return nil
}

// fakeLedger is an in-memory TransactionRepository with the same conditional
// settle semantics as the GORM implementation, usable under concurrency.
type fakeLedger struct {
	mu       sync.Mutex
	txns     map[uuid.UUID]*model.Transaction
	balances map[uint]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		txns:     make(map[uuid.UUID]*model.Transaction),
		balances: make(map[uint]int64),
	}
}

func (f *fakeLedger) Create(ctx context.Context, txn *model.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	stored := *txn
	f.txns[txn.ID] = &stored
	return nil
}

func (f *fakeLedger) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *txn
	return &copied, nil
}

func (f *fakeLedger) Settle(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if txn.Payment {
		return nil, errs.ErrAlreadySettled
	}
	txn.Payment = true
	f.balances[txn.UserID] += txn.Credits
	copied := *txn
	return &copied, nil
}

func (f *fakeLedger) balance(userID uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

// fakeGateway is a scripted gateway.Client.
type fakeGateway struct {
	verifyOK  bool
	createErr error
	fetchErr  error
	status    string
	receipt   string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*gateway.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.receipt = receipt
	return &gateway.Order{
		ID:       "order_" + receipt,
		Amount:   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *fakeGateway) FetchOrder(ctx context.Context, orderID string) (*gateway.Order, error) {
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	return &gateway.Order{
		ID:      orderID,
		Receipt: g.receipt,
		Status:  g.status,
	}, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return g.verifyOK
}

func newBillingServiceForTest(userRepo *MockUserRepository, ledger *fakeLedger, gw gateway.Client) BillingService {
	return NewBillingService(userRepo, ledger, stubSettlementLogRepo{}, gw, nil, "INR")
}

func TestBillingService_InitiatePurchase_CatalogAuthority(t *testing.T) {
	for _, details := range model.Plans() {
		t.Run(string(details.Plan), func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
			ledger := newFakeLedger()
			gw := &fakeGateway{verifyOK: true}

			service := newBillingServiceForTest(mockRepo, ledger, gw)

			order, err := service.InitiatePurchase(context.Background(), 1, string(details.Plan))
			assert.NoError(t, err)
			assert.NotNil(t, order)

			// minor unit conversion happens only at the gateway boundary
			assert.Equal(t, details.Amount.Mul(decimal.NewFromInt(100)).IntPart(), order.Amount)
			assert.Equal(t, "INR", order.Currency)

			receiptID, err := uuid.Parse(order.Receipt)
			assert.NoError(t, err)
			txn, err := ledger.FindByID(context.Background(), receiptID)
			assert.NoError(t, err)
			assert.Equal(t, details.Plan, txn.Plan)
			assert.True(t, details.Amount.Equal(txn.Amount))
			assert.Equal(t, details.Credits, txn.Credits)
			assert.False(t, txn.Payment)
			assert.Equal(t, int64(0), ledger.balance(1))
		})
	}
}

func TestBillingService_InitiatePurchase_Errors(t *testing.T) {
	tests := []struct {
		name          string
		planID        string
		setupMock     func(*MockUserRepository)
		gw            *fakeGateway
		expectedError error
	}{
		{
			name:          "invalid plan",
			planID:        "Platinum",
			setupMock:     func(m *MockUserRepository) {},
			gw:            &fakeGateway{},
			expectedError: errs.ErrInvalidPlan,
		},
		{
			name:   "user not found",
			planID: "Basic",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(nil, gorm.ErrRecordNotFound)
			},
			gw:            &fakeGateway{},
			expectedError: errs.ErrUserNotFound,
		},
		{
			name:   "gateway unavailable",
			planID: "Basic",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
			},
			gw:            &fakeGateway{createErr: errs.ErrGatewayUnavailable},
			expectedError: errs.ErrGatewayUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			ledger := newFakeLedger()

			service := newBillingServiceForTest(mockRepo, ledger, tt.gw)

			order, err := service.InitiatePurchase(context.Background(), 1, tt.planID)
			assert.Equal(t, tt.expectedError, err)
			assert.Nil(t, order)
			assert.Equal(t, int64(0), ledger.balance(1))
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestBillingService_ConfirmPurchase_SignatureMismatch(t *testing.T) {
	ledger := newFakeLedger()
	txn := &model.Transaction{UserID: 1, Plan: model.PlanBasic, Credits: 100}
	assert.NoError(t, ledger.Create(context.Background(), txn))

	gw := &fakeGateway{verifyOK: false, status: "paid", receipt: txn.ID.String()}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	err := service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "tampered")
	assert.Equal(t, errs.ErrSignatureMismatch, err)

	// nothing downstream of the authenticity gate may mutate state
	stored, _ := ledger.FindByID(context.Background(), txn.ID)
	assert.False(t, stored.Payment)
	assert.Equal(t, int64(0), ledger.balance(1))
}

func TestBillingService_ConfirmPurchase_PaymentNotSettled(t *testing.T) {
	ledger := newFakeLedger()
	txn := &model.Transaction{UserID: 1, Plan: model.PlanBasic, Credits: 100}
	assert.NoError(t, ledger.Create(context.Background(), txn))

	gw := &fakeGateway{verifyOK: true, status: "created", receipt: txn.ID.String()}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	err := service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig")
	assert.Equal(t, errs.ErrPaymentNotSettled, err)
	assert.Equal(t, int64(0), ledger.balance(1))
}

func TestBillingService_ConfirmPurchase_UnknownReceipt(t *testing.T) {
	ledger := newFakeLedger()
	gw := &fakeGateway{verifyOK: true, status: "paid", receipt: uuid.New().String()}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	err := service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig")
	assert.Equal(t, errs.ErrTransactionNotFound, err)
	assert.Equal(t, int64(0), ledger.balance(1))
}

func TestBillingService_ConfirmPurchase_GatewayUnavailable(t *testing.T) {
	ledger := newFakeLedger()
	gw := &fakeGateway{verifyOK: true, fetchErr: errs.ErrGatewayUnavailable}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	err := service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig")
	assert.Equal(t, errs.ErrGatewayUnavailable, err)
}

func TestBillingService_ConfirmPurchase_Idempotent(t *testing.T) {
	ledger := newFakeLedger()
	txn := &model.Transaction{UserID: 1, Plan: model.PlanAdvanced, Credits: 500}
	assert.NoError(t, ledger.Create(context.Background(), txn))

	gw := &fakeGateway{verifyOK: true, status: "paid", receipt: txn.ID.String()}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	// first confirmation grants credits exactly once
	assert.NoError(t, service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig"))
	assert.Equal(t, int64(500), ledger.balance(1))

	// replaying the same payload must not double-credit
	err := service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig")
	assert.Equal(t, errs.ErrAlreadySettled, err)
	assert.Equal(t, int64(500), ledger.balance(1))
}

func TestBillingService_ConfirmPurchase_Concurrent(t *testing.T) {
	const attempts = 16

	ledger := newFakeLedger()
	txn := &model.Transaction{UserID: 1, Plan: model.PlanAdvanced, Credits: 500}
	assert.NoError(t, ledger.Create(context.Background(), txn))

	gw := &fakeGateway{verifyOK: true, status: "paid", receipt: txn.ID.String()}
	service := newBillingServiceForTest(new(MockUserRepository), ledger, gw)

	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- service.ConfirmPurchase(context.Background(), "order_1", "pay_1", "sig")
		}()
	}
	wg.Wait()
	close(results)

	var settled, alreadySettled int
	for err := range results {
		switch err {
		case nil:
			settled++
		case errs.ErrAlreadySettled:
			alreadySettled++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, settled)
	assert.Equal(t, attempts-1, alreadySettled)
	assert.Equal(t, int64(500), ledger.balance(1))
}

func TestBillingService_EndToEnd_AdvancedPlan(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByID", mock.Anything, uint(7)).Return(&model.User{ID: 7, CreditBalance: 0}, nil)
	ledger := newFakeLedger()
	gw := &fakeGateway{verifyOK: true, status: "created"}

	service := newBillingServiceForTest(mockRepo, ledger, gw)

	order, err := service.InitiatePurchase(context.Background(), 7, "Advanced")
	assert.NoError(t, err)
	assert.Equal(t, int64(5000), order.Amount) // 50 in minor units

	receiptID, _ := uuid.Parse(order.Receipt)
	txn, _ := ledger.FindByID(context.Background(), receiptID)
	assert.True(t, txn.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, int64(500), txn.Credits)
	assert.False(t, txn.Payment)

	// gateway reports the order as paid after checkout
	gw.status = "paid"

	assert.NoError(t, service.ConfirmPurchase(context.Background(), order.ID, "pay_1", "sig"))
	assert.Equal(t, int64(500), ledger.balance(7))

	txn, _ = ledger.FindByID(context.Background(), receiptID)
	assert.True(t, txn.Payment)
}

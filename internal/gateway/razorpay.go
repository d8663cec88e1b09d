package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	errs "imagify/internal/errors"
)

// OrderStatusPaid is the gateway status of a settled order.
const OrderStatusPaid = "paid"

// Order is the remote order descriptor. Amount is in the gateway's minor
// currency unit; the x100 conversion never leaves this package.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client is the payment gateway boundary used by the settlement engine.
type Client interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type razorpayClient struct {
	client *razorpay.Client
	secret string
}

// NewRazorpay creates a Razorpay-backed gateway client.
func NewRazorpay(keyID, keySecret string) Client {
	return &razorpayClient{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder creates a remote order for amount (major units) with the given
// receipt key. Gateway failures surface as ErrGatewayUnavailable.
func (c *razorpayClient) CreateOrder(ctx context.Context, amount decimal.Decimal, currency, receipt string) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount.Mul(decimal.NewFromInt(100)).IntPart(),
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := c.client.Order.Create(data, nil)
	if err != nil {
		log.Printf("gateway: order create failed: %v", err)
		return nil, errs.ErrGatewayUnavailable
	}
	return orderFromResponse(body), nil
}

// FetchOrder fetches the current state of a remote order.
func (c *razorpayClient) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := c.client.Order.Fetch(orderID, nil, nil)
	if err != nil {
		log.Printf("gateway: order fetch failed: %v", err)
		return nil, errs.ErrGatewayUnavailable
	}
	return orderFromResponse(body), nil
}

// VerifySignature recomputes the HMAC-SHA256 of "orderID|paymentID" with the
// shared secret and compares it in constant time against the supplied
// signature. This is the authenticity gate for ConfirmPurchase.
func (c *razorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, c.secret)
}

// VerifySignature checks a checkout confirmation signature against a secret.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func orderFromResponse(body map[string]interface{}) *Order {
	return &Order{
		ID:       asString(body["id"]),
		Amount:   asInt64(body["amount"]),
		Currency: asString(body["currency"]),
		Receipt:  asString(body["receipt"]),
		Status:   asString(body["status"]),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Charge statuses.
const (
	StatusCaptured = "captured"
	StatusDeclined = "declined"
)

// ChargeRequest asks the gateway to collect money from the user.
type ChargeRequest struct {
	UserID   string
	Amount   decimal.Decimal
	Currency string
	Method   string
}

// ChargeResult is the gateway's answer.
type ChargeResult struct {
	Reference  string
	Status     string
	CapturedAt time.Time
}

// RefundRequest reverses a captured charge.
type RefundRequest struct {
	Reference string
	Amount    decimal.Decimal
	Currency  string
	Reason    string
}

// MockGateway accepts every well-formed charge.
type MockGateway struct {
	logger *zap.Logger
}

// NewMockGateway returns gateway.
func NewMockGateway(logger *zap.Logger) *MockGateway {
	return &MockGateway{logger: logger}
}

// Charge captures the requested amount.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, errors.New("payment: amount must be positive")
	}
	res := &ChargeResult{
		Reference:  "pay_" + uuid.NewString(),
		Status:     StatusCaptured,
		CapturedAt: time.Now().UTC(),
	}
	g.logger.Info("payment captured (mock)",
		zap.String("user_id", req.UserID),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("currency", req.Currency),
		zap.String("method", req.Method),
		zap.String("reference", res.Reference),
	)
	return res, nil
}

// Refund returns a captured amount to the payer.
func (g *MockGateway) Refund(ctx context.Context, req RefundRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.Reference == "" {
		return errors.New("payment: refund needs a charge reference")
	}
	if !req.Amount.IsPositive() {
		return errors.New("payment: amount must be positive")
	}
	g.logger.Info("payment refunded (mock)",
		zap.String("reference", req.Reference),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.String("currency", req.Currency),
		zap.String("reason", req.Reason),
	)
	return nil
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/payment"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

var (
	// ErrInvalidAmount is returned for top-ups below the minimum.
	ErrInvalidAmount = errors.New("wallet: amount below minimum top-up")
	// ErrInvalidPaymentMethod is returned for unknown payment method kinds.
	ErrInvalidPaymentMethod = errors.New("wallet: unsupported payment method")
	// ErrPaymentFailed is returned when the gateway does not capture the charge.
	ErrPaymentFailed = errors.New("wallet: payment failed")
	// ErrWalletUnavailable hides wallet storage failures.
	ErrWalletUnavailable = errors.New("wallet: service unavailable")
)

// MinTopUp is the smallest accepted top-up amount.
var MinTopUp = decimal.NewFromInt(100)

const (
	walletHistoryLimit = 20
	refundTimeout      = 10 * time.Second
)

// WalletRepository defines the ledger operations used by WalletService.
type WalletRepository interface {
	Credit(ctx context.Context, entry models.WalletTransaction) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.WalletTransaction, error)
}

// PaymentGateway collects money for top-ups and returns it when the wallet cannot be credited.
type PaymentGateway interface {
	Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error)
	Refund(ctx context.Context, req payment.RefundRequest) error
}

// TopUpResult is returned by TopUp.
type TopUpResult struct {
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
	Reference  string
}

// WalletService manages wallet balances.
type WalletService struct {
	wallet  WalletRepository
	users   UserRepository
	gateway PaymentGateway
	tariff  *TariffService
	logger  *zap.Logger
	now     func() time.Time
}

// NewWalletService builds WalletService.
func NewWalletService(wallet WalletRepository, users UserRepository, gateway PaymentGateway, tariff *TariffService, logger *zap.Logger) *WalletService {
	return &WalletService{wallet: wallet, users: users, gateway: gateway, tariff: tariff, logger: logger, now: time.Now}
}

// Wallet returns the balance and the latest ledger rows.
func (s *WalletService) Wallet(ctx context.Context, userID string) (*models.Wallet, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load wallet user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrWalletUnavailable
	}
	txs, err := s.wallet.ListTransactions(ctx, userID, walletHistoryLimit)
	if err != nil {
		s.logger.Error("list wallet transactions failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrWalletUnavailable
	}
	return &models.Wallet{
		Balance:      user.WalletBalance.Round(2),
		Currency:     s.tariff.Currency(),
		Transactions: txs,
	}, nil
}

// TopUp charges the gateway and credits the wallet.
func (s *WalletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*TopUpResult, error) {
	if amount.LessThan(MinTopUp) {
		return nil, ErrInvalidAmount
	}
	amount = amount.Round(2)

	method = strings.ToLower(strings.TrimSpace(method))
	switch method {
	case "":
		method = models.PaymentMethodUPI
	case models.PaymentMethodCard, models.PaymentMethodUPI, models.PaymentMethodWallet:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	charge, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		UserID:   userID,
		Amount:   amount,
		Currency: s.tariff.Currency(),
		Method:   method,
	})
	if err != nil {
		s.logger.Error("payment charge failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrPaymentFailed
	}
	if charge.Status != payment.StatusCaptured {
		return nil, ErrPaymentFailed
	}

	balance, err := s.wallet.Credit(ctx, models.WalletTransaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      models.WalletTopUp,
		Amount:    amount,
		Method:    method,
		Reference: charge.Reference,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Error("wallet credit failed",
			zap.String("user_id", userID),
			zap.String("reference", charge.Reference),
			zap.Error(err),
		)
		s.refund(ctx, userID, amount, charge.Reference, err)
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrWalletUnavailable
	}

	s.logger.Info("wallet topped up",
		zap.String("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("reference", charge.Reference),
	)
	return &TopUpResult{Amount: amount, NewBalance: balance, Reference: charge.Reference}, nil
}

// refund reverses a capture whose credit failed. It runs detached from ctx because
// a cancelled request is a common cause of the failed credit.
func (s *WalletService) refund(ctx context.Context, userID string, amount decimal.Decimal, reference string, cause error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refundTimeout)
	defer cancel()

	err := s.gateway.Refund(ctx, payment.RefundRequest{
		Reference: reference,
		Amount:    amount,
		Currency:  s.tariff.Currency(),
		Reason:    "wallet credit failed: " + cause.Error(),
	})
	if err != nil {
		s.logger.Error("payment captured but not credited",
			zap.String("user_id", userID),
			zap.String("amount", amount.StringFixed(2)),
			zap.String("reference", reference),
			zap.NamedError("credit_error", cause),
			zap.Error(err),
		)
		return
	}
	s.logger.Warn("payment refunded after failed credit",
		zap.String("user_id", userID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("reference", reference),
	)
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// WalletService is the balance surface used by WalletHandlers.
type WalletService interface {
	Wallet(ctx context.Context, userID string) (*models.Wallet, error)
	TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*service.TopUpResult, error)
}

// WalletHandlers serves the wallet routes.
type WalletHandlers struct {
	wallet WalletService
	logger *zap.Logger
}

// NewWalletHandlers returns handler.
func NewWalletHandlers(wallet WalletService, logger *zap.Logger) *WalletHandlers {
	return &WalletHandlers{wallet: wallet, logger: logger}
}

// Get handles GET /api/wallet.
func (h *WalletHandlers) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	wallet, err := h.wallet.Wallet(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, wallet)
}

// TopUp handles POST /api/wallet/topup.
func (h *WalletHandlers) TopUp(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req struct {
		Amount *decimal.Decimal `json:"amount"`
		Method string           `json:"method"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Amount == nil || req.Amount.LessThan(service.MinTopUp) {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidAmount, "Minimum top-up ₹100")
		return
	}

	res, err := h.wallet.TopUp(r.Context(), claims.UserID, *req.Amount, req.Method)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{
		"message":    "Top-up successful",
		"amount":     res.Amount,
		"newBalance": res.NewBalance,
		"reference":  res.Reference,
	})
}

func (h *WalletHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidAmount, "Minimum top-up ₹100")
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Unsupported payment method")
	case errors.Is(err, service.ErrPaymentFailed):
		response.Error(w, http.StatusBadGateway, response.CodePaymentFailed, "Payment could not be completed")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, response.CodeUserNotFound, "User not found")
	default:
		if !errors.Is(err, service.ErrWalletUnavailable) {
			h.logger.Error("wallet request failed", zap.Error(err))
		}
		response.Error(w, http.StatusInternalServerError, response.CodeWalletServiceUnavailable, "Wallet service unavailable")
	}
}

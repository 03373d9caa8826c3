package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/response"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

// AuthService is the login surface used by AuthHandlers.
type AuthService interface {
	SendOTP(ctx context.Context, identifier string) (*service.SendOTPResult, error)
	VerifyOTP(ctx context.Context, identifier, code string, data *service.UserData) (*service.LoginResult, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

// AuthHandlers serves /api/auth.
type AuthHandlers struct {
	auth   AuthService
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthHandlers returns handler.
func NewAuthHandlers(auth AuthService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{auth: auth, logger: logger, now: time.Now}
}

type sendOTPResponse struct {
	Message      string `json:"message"`
	IsRegistered bool   `json:"isRegistered"`
	OTP          string `json:"otp,omitempty"`
	ExpiresIn    int    `json:"expiresIn"`
}

type loginResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	IsNewUser bool         `json:"isNewUser"`
}

// SendOTP handles POST /api/auth/send-otp.
func (h *AuthHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" {
		response.ErrorWithDetails(w, http.StatusBadRequest, response.CodeInvalidInput, "Phone or email required",
			map[string]string{"field": "identifier"})
		return
	}

	res, err := h.auth.SendOTP(r.Context(), req.Identifier)
	if err != nil {
		h.writeError(w, err)
		return
	}

	expiresIn := int(res.ExpiresAt.Sub(h.now()).Round(time.Second) / time.Second)
	if expiresIn < 0 {
		expiresIn = 0
	}
	response.Success(w, http.StatusOK, sendOTPResponse{
		Message:      "OTP sent",
		IsRegistered: res.IsRegistered,
		OTP:          res.Code,
		ExpiresIn:    expiresIn,
	})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string            `json:"identifier"`
		OTP        string            `json:"otp"`
		UserData   *service.UserData `json:"userData"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Identifier) == "" || strings.TrimSpace(req.OTP) == "" {
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Identifier and OTP required")
		return
	}

	res, err := h.auth.VerifyOTP(r.Context(), req.Identifier, req.OTP, req.UserData)
	if err != nil {
		h.writeError(w, err)
		return
	}

	status := http.StatusOK
	if res.IsNewUser {
		status = http.StatusCreated
	}
	response.Success(w, status, loginResponse{
		Message:   "Authenticated",
		Token:     res.Token,
		User:      res.User,
		IsNewUser: res.IsNewUser,
	})
}

// Me handles GET /api/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentifier):
		response.Error(w, http.StatusBadRequest, response.CodeInvalidInput, "Enter a valid phone number or email")
	case errors.Is(err, service.ErrInvalidOTP):
		response.Error(w, http.StatusUnauthorized, response.CodeInvalidOTP, "OTP verification failed")
	case errors.Is(err, service.ErrIdentifierInUse):
		response.Error(w, http.StatusConflict, response.CodeIdentifierInUse, "Email or phone already registered")
	case errors.Is(err, service.ErrUserNotFound):
		response.Error(w, http.StatusNotFound, response.CodeUserNotFound, "User not found")
	case errors.Is(err, service.ErrOTPUnavailable):
		response.Error(w, http.StatusInternalServerError, response.CodeOTPServiceUnavailable, "Unable to send OTP right now")
	case errors.Is(err, service.ErrUserServiceUnavailable):
		response.Error(w, http.StatusInternalServerError, response.CodeUserServiceUnavailable, "User service unavailable")
	default:
		h.logger.Error("auth request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, response.CodeInternalError, "Internal server error")
	}
}

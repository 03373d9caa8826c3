package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/http/middleware"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/service"
)

type mockAuthService struct {
	sendFn    func(ctx context.Context, identifier string) (*service.SendOTPResult, error)
	verifyFn  func(ctx context.Context, identifier, code string, data *service.UserData) (*service.LoginResult, error)
	currentFn func(ctx context.Context, userID string) (*models.User, error)
}

func (m *mockAuthService) SendOTP(ctx context.Context, identifier string) (*service.SendOTPResult, error) {
	return m.sendFn(ctx, identifier)
}

func (m *mockAuthService) VerifyOTP(ctx context.Context, identifier, code string, data *service.UserData) (*service.LoginResult, error) {
	return m.verifyFn(ctx, identifier, code, data)
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return m.currentFn(ctx, userID)
}

type mockChargerService struct {
	listFn func(ctx context.Context, filter models.ChargerFilter) ([]models.Charger, error)
	getFn  func(ctx context.Context, id string) (*models.Charger, error)
}

func (m *mockChargerService) ListAvailable(ctx context.Context, filter models.ChargerFilter) ([]models.Charger, error) {
	return m.listFn(ctx, filter)
}

func (m *mockChargerService) GetByID(ctx context.Context, id string) (*models.Charger, error) {
	return m.getFn(ctx, id)
}

type mockSessionService struct {
	startFn func(ctx context.Context, in service.StartSessionInput) (*models.SessionRequest, error)
	stopFn  func(ctx context.Context, in service.StopSessionInput) (*service.StopResult, error)
}

func (m *mockSessionService) StartSession(ctx context.Context, in service.StartSessionInput) (*models.SessionRequest, error) {
	return m.startFn(ctx, in)
}

func (m *mockSessionService) StopSession(ctx context.Context, in service.StopSessionInput) (*service.StopResult, error) {
	return m.stopFn(ctx, in)
}

type mockHistoryService struct {
	listFn func(ctx context.Context, idTag string, limit int) ([]models.ChargingSession, error)
}

func (m *mockHistoryService) ListForTag(ctx context.Context, idTag string, limit int) ([]models.ChargingSession, error) {
	return m.listFn(ctx, idTag, limit)
}

type mockWalletService struct {
	walletFn func(ctx context.Context, userID string) (*models.Wallet, error)
	topUpFn  func(ctx context.Context, userID string, amount decimal.Decimal, method string) (*service.TopUpResult, error)
}

func (m *mockWalletService) Wallet(ctx context.Context, userID string) (*models.Wallet, error) {
	return m.walletFn(ctx, userID)
}

func (m *mockWalletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal, method string) (*service.TopUpResult, error) {
	return m.topUpFn(ctx, userID, amount, method)
}

type mockUserService struct {
	updateFn func(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
	saveFn   func(ctx context.Context, userID, chargerID string) ([]string, error)
	unsaveFn func(ctx context.Context, userID, chargerID string) ([]string, error)
	listFn   func(ctx context.Context, userID string) ([]string, error)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	return m.updateFn(ctx, userID, upd)
}

func (m *mockUserService) SaveCharger(ctx context.Context, userID, chargerID string) ([]string, error) {
	return m.saveFn(ctx, userID, chargerID)
}

func (m *mockUserService) UnsaveCharger(ctx context.Context, userID, chargerID string) ([]string, error) {
	return m.unsaveFn(ctx, userID, chargerID)
}

func (m *mockUserService) SavedChargers(ctx context.Context, userID string) ([]string, error) {
	return m.listFn(ctx, userID)
}

// envelope mirrors response.Envelope with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func withCaller(req *http.Request, userID, idTag string) *http.Request {
	return req.WithContext(middleware.WithClaims(req.Context(), &service.Claims{UserID: userID, IDTag: idTag}))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int) envelope {
	t.Helper()
	if w.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body %s", w.Code, wantStatus, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func wantErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, code string) {
	t.Helper()
	env := decode(t, w, wantStatus)
	if env.Success || env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/ocpp"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/payment"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

var testNow = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type mockChargerRepo struct {
	listFn func(ctx context.Context, q repository.ChargerQuery) ([]models.ChargeBoxRecord, error)
	getFn  func(ctx context.Context, id string) (*models.ChargeBoxRecord, error)
}

func (m *mockChargerRepo) ListAvailable(ctx context.Context, q repository.ChargerQuery) ([]models.ChargeBoxRecord, error) {
	return m.listFn(ctx, q)
}

func (m *mockChargerRepo) GetByID(ctx context.Context, id string) (*models.ChargeBoxRecord, error) {
	return m.getFn(ctx, id)
}

type mockTransactionRepo struct {
	listFn func(ctx context.Context, idTag string, limit int) ([]models.TransactionRecord, error)
}

func (m *mockTransactionRepo) ListByIDTag(ctx context.Context, idTag string, limit int) ([]models.TransactionRecord, error) {
	return m.listFn(ctx, idTag, limit)
}

type mockTagRepo struct {
	upsertFn func(ctx context.Context, idTag, info string, at time.Time) error
}

func (m *mockTagRepo) Upsert(ctx context.Context, idTag, info string, at time.Time) error {
	return m.upsertFn(ctx, idTag, info, at)
}

type recordingTags struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingTags) RegisterTag(_ context.Context, idTag, userID, _ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, idTag+"|"+userID)
	return true
}

// memUserRepo is an in-memory UserRepository and ProfileRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	saved map[string][]string
	err   error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}, saved: map[string][]string{}}
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.users {
		if u.Phone != nil && existing.Phone != nil && *u.Phone == *existing.Phone {
			return repository.ErrUserConflict
		}
		if u.Email != nil && existing.Email != nil && *u.Email == *existing.Email {
			return repository.ErrUserConflict
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if match(u) {
			cp := *u
			cp.SavedChargers = append([]string{}, r.saved[u.ID]...)
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUserRepo) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email != nil && *u.Email == email })
}

func (r *memUserRepo) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		e := *upd.Email
		u.Email = &e
	}
	if upd.EVDetails != nil {
		u.EVDetails = upd.EVDetails
	}
	u.UpdatedAt = at
	return nil
}

func (r *memUserRepo) AddSavedCharger(_ context.Context, userID, chargerID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.saved[userID] {
		if id == chargerID {
			return nil
		}
	}
	r.saved[userID] = append(r.saved[userID], chargerID)
	return nil
}

func (r *memUserRepo) RemoveSavedCharger(_ context.Context, userID, chargerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := []string{}
	for _, id := range r.saved[userID] {
		if id != chargerID {
			kept = append(kept, id)
		}
	}
	r.saved[userID] = kept
	return nil
}

func (r *memUserRepo) SavedChargerIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.saved[userID]...), nil
}

type mockChargerLookup struct {
	getFn func(ctx context.Context, id string) (*models.Charger, error)
}

func (m *mockChargerLookup) GetByID(ctx context.Context, id string) (*models.Charger, error) {
	return m.getFn(ctx, id)
}

func chargerExists(ids ...string) *mockChargerLookup {
	return &mockChargerLookup{getFn: func(_ context.Context, id string) (*models.Charger, error) {
		for _, known := range ids {
			if known == id {
				return &models.Charger{ID: id, Name: id}, nil
			}
		}
		return nil, nil
	}}
}

type mockCommander struct {
	startFn func(ctx context.Context, req ocpp.RemoteStartRequest) (ocpp.CommandResult, error)
	stopFn  func(ctx context.Context, req ocpp.RemoteStopRequest) (ocpp.CommandResult, error)
}

func (m *mockCommander) RemoteStart(ctx context.Context, req ocpp.RemoteStartRequest) (ocpp.CommandResult, error) {
	return m.startFn(ctx, req)
}

func (m *mockCommander) RemoteStop(ctx context.Context, req ocpp.RemoteStopRequest) (ocpp.CommandResult, error) {
	return m.stopFn(ctx, req)
}

type mockGateway struct {
	chargeFn func(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error)
	refundFn func(ctx context.Context, req payment.RefundRequest) error
	refunds  []payment.RefundRequest
}

func (m *mockGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.ChargeResult, error) {
	return m.chargeFn(ctx, req)
}

func (m *mockGateway) Refund(ctx context.Context, req payment.RefundRequest) error {
	m.refunds = append(m.refunds, req)
	if m.refundFn == nil {
		return nil
	}
	return m.refundFn(ctx, req)
}

type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
	err   error
}

func (c *captureSender) SendOTP(_ context.Context, _, recipient, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.codes == nil {
		c.codes = map[string]string{}
	}
	c.codes[recipient] = code
	return nil
}

func (c *captureSender) last(recipient string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[recipient]
}

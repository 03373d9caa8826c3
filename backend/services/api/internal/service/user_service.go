package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

var (
	// ErrInvalidProfile is returned for profile updates that fail validation.
	ErrInvalidProfile = errors.New("user: invalid profile")
	// ErrChargerNotFound is returned when a referenced charger does not exist.
	ErrChargerNotFound = errors.New("charger: not found")
)

const maxNameLength = 100

// ProfileRepository defines the profile writes used by UserService.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate, at time.Time) error
	AddSavedCharger(ctx context.Context, userID, chargerID string, at time.Time) error
	RemoveSavedCharger(ctx context.Context, userID, chargerID string) error
	SavedChargerIDs(ctx context.Context, userID string) ([]string, error)
}

// ChargerLookup resolves a charger id.
type ChargerLookup interface {
	GetByID(ctx context.Context, id string) (*models.Charger, error)
}

// UserService manages profile data and saved chargers.
type UserService struct {
	repo     ProfileRepository
	chargers ChargerLookup
	logger   *zap.Logger
	now      func() time.Time
}

// NewUserService builds UserService.
func NewUserService(repo ProfileRepository, chargers ChargerLookup, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, chargers: chargers, logger: logger, now: time.Now}
}

// UpdateProfile validates and applies upd, returning the stored user.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	if err := validateProfile(&upd); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(ctx, userID, upd, s.now().UTC()); err != nil {
		return nil, s.mapErr("update profile", userID, err)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, s.mapErr("reload profile", userID, err)
	}
	return user, nil
}

// SaveCharger bookmarks an existing charger and returns the saved ids.
func (s *UserService) SaveCharger(ctx context.Context, userID, chargerID string) ([]string, error) {
	chargerID = strings.TrimSpace(chargerID)
	charger, err := s.chargers.GetByID(ctx, chargerID)
	if err != nil {
		return nil, err
	}
	if charger == nil {
		return nil, ErrChargerNotFound
	}
	if err := s.repo.AddSavedCharger(ctx, userID, chargerID, s.now().UTC()); err != nil {
		return nil, s.mapErr("save charger", userID, err)
	}
	return s.SavedChargers(ctx, userID)
}

// UnsaveCharger removes a bookmark and returns the saved ids.
func (s *UserService) UnsaveCharger(ctx context.Context, userID, chargerID string) ([]string, error) {
	if err := s.repo.RemoveSavedCharger(ctx, userID, strings.TrimSpace(chargerID)); err != nil {
		return nil, s.mapErr("unsave charger", userID, err)
	}
	return s.SavedChargers(ctx, userID)
}

// SavedChargers lists bookmarked charger ids.
func (s *UserService) SavedChargers(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.repo.SavedChargerIDs(ctx, userID)
	if err != nil {
		return nil, s.mapErr("list saved chargers", userID, err)
	}
	return ids, nil
}

func (s *UserService) mapErr(op, userID string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrUserConflict):
		return ErrIdentifierInUse
	}
	s.logger.Error(op+" failed", zap.String("user_id", userID), zap.Error(err))
	return ErrUserServiceUnavailable
}

func validateProfile(upd *models.ProfileUpdate) error {
	if upd.Name == nil && upd.Email == nil && upd.EVDetails == nil {
		return ErrInvalidProfile
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" || len(name) > maxNameLength {
			return ErrInvalidProfile
		}
		upd.Name = &name
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if !ValidEmail(email) {
			return ErrInvalidProfile
		}
		upd.Email = &email
	}
	if ev := upd.EVDetails; ev != nil {
		if strings.TrimSpace(ev.Model) == "" || ev.BatteryCapacity <= 0 {
			return ErrInvalidProfile
		}
	}
	return nil
}

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
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

var (
	// ErrInvalidOTP represents a wrong, expired or already used code.
	ErrInvalidOTP = errors.New("auth: invalid or expired otp")
	// ErrUserNotFound is returned when claims reference an unknown user.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrUserServiceUnavailable hides user storage failures.
	ErrUserServiceUnavailable = errors.New("auth: user service unavailable")
	// ErrIdentifierInUse is returned when an email or phone belongs to another user.
	ErrIdentifierInUse = errors.New("auth: identifier already registered")
)

const defaultUserName = "EV Driver"

// UserRepository defines storage contract used by the auth flow.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// TagRegistrar makes a user's tag known to chargers.
type TagRegistrar interface {
	RegisterTag(ctx context.Context, idTag, userID, info string) bool
}

// UserData is the optional profile supplied on first login.
type UserData struct {
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	EVDetails *models.EVDetails `json:"evDetails"`
}

// SendOTPResult is returned by SendOTP.
type SendOTPResult struct {
	IsRegistered bool
	ExpiresAt    time.Time
	Code         string
}

// LoginResult is returned by VerifyOTP.
type LoginResult struct {
	Token     string
	User      *models.User
	IsNewUser bool
}

// AuthService contains OTP login logic.
type AuthService struct {
	otp       *OTPService
	users     UserRepository
	tags      TagRegistrar
	tokenizer *TokenService
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService builds AuthService.
func NewAuthService(otp *OTPService, users UserRepository, tags TagRegistrar, tokenizer *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		otp:       otp,
		users:     users,
		tags:      tags,
		tokenizer: tokenizer,
		logger:    logger,
		now:       time.Now,
	}
}

// SendOTP issues a login code and reports whether the identifier already has an account.
func (s *AuthService) SendOTP(ctx context.Context, identifier string) (*SendOTPResult, error) {
	issued, err := s.otp.Issue(ctx, identifier)
	if err != nil {
		return nil, err
	}

	res := &SendOTPResult{ExpiresAt: issued.ExpiresAt, Code: issued.Code}
	if _, err := s.lookup(ctx, issued.Identifier); err == nil {
		res.IsRegistered = true
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		s.logger.Warn("registration lookup failed", zap.Error(err))
	}
	return res, nil
}

// VerifyOTP consumes the code, creating the user on first login, and issues a bearer token.
func (s *AuthService) VerifyOTP(ctx context.Context, identifier, code string, data *UserData) (*LoginResult, error) {
	ok, err := s.otp.Verify(ctx, identifier, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidOTP
	}
	id, err := ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	isNew := false
	user, err := s.lookup(ctx, id)
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		if user, err = s.register(ctx, id, data); err != nil {
			return nil, err
		}
		isNew = true
	case err != nil:
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, ErrUserServiceUnavailable
	}

	claims := Claims{UserID: user.ID, IDTag: user.IDTag}
	if user.Phone != nil {
		claims.Phone = *user.Phone
	}
	if user.Email != nil {
		claims.Email = *user.Email
	}
	token, err := s.tokenizer.IssueToken(claims)
	if err != nil {
		s.logger.Error("issue token failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, ErrUserServiceUnavailable
	}

	return &LoginResult{Token: token, User: user, IsNewUser: isNew}, nil
}

// CurrentUser loads the user referenced by a token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("load user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrUserServiceUnavailable
	}
	return user, nil
}

func (s *AuthService) lookup(ctx context.Context, id Identifier) (*models.User, error) {
	if id.Kind == IdentifierEmail {
		return s.users.GetByEmail(ctx, id.Value)
	}
	return s.users.GetByPhone(ctx, id.Value)
}

func (s *AuthService) register(ctx context.Context, id Identifier, data *UserData) (*models.User, error) {
	now := s.now().UTC()
	idTag, err := GenerateIDTag(now)
	if err != nil {
		return nil, ErrUserServiceUnavailable
	}

	user := &models.User{
		ID:             uuid.NewString(),
		Name:           defaultUserName,
		IDTag:          idTag,
		WalletBalance:  decimal.Zero,
		IsVerified:     true,
		SavedChargers:  []string{},
		PaymentMethods: []models.PaymentMethod{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	value := id.Value
	if id.Kind == IdentifierEmail {
		user.Email = &value
	} else {
		user.Phone = &value
	}
	if data != nil {
		if name := strings.TrimSpace(data.Name); name != "" {
			user.Name = name
		}
		if email := strings.ToLower(strings.TrimSpace(data.Email)); user.Email == nil && ValidEmail(email) {
			user.Email = &email
		}
		if data.EVDetails != nil && strings.TrimSpace(data.EVDetails.Model) != "" {
			user.EVDetails = data.EVDetails
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserConflict) {
			return nil, ErrIdentifierInUse
		}
		s.logger.Error("create user failed", zap.Error(err))
		return nil, ErrUserServiceUnavailable
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("id_tag", user.IDTag))

	s.tags.RegisterTag(ctx, user.IDTag, user.ID, "")
	return user, nil
}

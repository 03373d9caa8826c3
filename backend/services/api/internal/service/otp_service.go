package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/metrics"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/notify"
)

// ErrOTPUnavailable wraps store and delivery failures.
var ErrOTPUnavailable = errors.New("otp: service unavailable")

// OTPStore keeps one hashed code per identifier key.
type OTPStore interface {
	// Save stores hash under key for ttl, replacing any previous entry.
	Save(ctx context.Context, key, hash string, ttl time.Duration) error
	// Consume atomically deletes the entry when match accepts its hash. Each rejected
	// hash counts one attempt and the entry is deleted after maxAttempts of them.
	Consume(ctx context.Context, key string, maxAttempts int, match func(hash string) bool) (bool, error)
}

// OTPSender delivers codes out of band.
type OTPSender interface {
	SendOTP(ctx context.Context, channel, recipient, code string) error
}

// OTPOptions configures code issuance.
type OTPOptions struct {
	Length int
	TTL    time.Duration
	// MaxAttempts wrong codes invalidate the issued code.
	MaxAttempts int
	// DevCode replaces the random code when Development is set.
	DevCode     string
	Development bool
}

const defaultOTPMaxAttempts = 5

// IssueResult describes an issued code.
type IssueResult struct {
	Identifier Identifier
	ExpiresAt  time.Time
	// Code is only populated in development so clients can complete login without delivery.
	Code string
}

// OTPService issues and verifies one-time login codes.
type OTPService struct {
	store   OTPStore
	sender  OTPSender
	opts    OTPOptions
	pattern *regexp.Regexp
	metrics metrics.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewOTPService builds OTPService.
func NewOTPService(store OTPStore, sender OTPSender, opts OTPOptions, recorder metrics.Recorder, logger *zap.Logger) *OTPService {
	if opts.Length <= 0 {
		opts.Length = 4
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultOTPMaxAttempts
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &OTPService{
		store:   store,
		sender:  sender,
		opts:    opts,
		pattern: regexp.MustCompile(fmt.Sprintf(`^[0-9]{%d}$`, opts.Length)),
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

func otpKey(id Identifier) string {
	return "otp:" + id.Value
}

// Issue generates a code for rawIdentifier, stores its hash and delivers it.
func (s *OTPService) Issue(ctx context.Context, rawIdentifier string) (*IssueResult, error) {
	id, err := ParseIdentifier(rawIdentifier)
	if err != nil {
		return nil, err
	}

	code := s.opts.DevCode
	if !s.opts.Development || !s.pattern.MatchString(code) {
		if code, err = generateCode(s.opts.Length); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}
	if err := s.store.Save(ctx, otpKey(id), string(hash), s.opts.TTL); err != nil {
		s.logger.Error("otp store save failed", zap.String("kind", id.Kind), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}

	channel := notify.ChannelSMS
	if id.Kind == IdentifierEmail {
		channel = notify.ChannelEmail
	}
	if err := s.sender.SendOTP(ctx, channel, id.Value, code); err != nil {
		s.logger.Error("otp delivery failed", zap.String("channel", channel), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}
	s.metrics.RecordOTPIssued(channel)

	res := &IssueResult{Identifier: id, ExpiresAt: s.now().UTC().Add(s.opts.TTL)}
	if s.opts.Development {
		res.Code = code
	}
	return res, nil
}

// Verify consumes the code for rawIdentifier. It succeeds at most once per issued code.
func (s *OTPService) Verify(ctx context.Context, rawIdentifier, code string) (bool, error) {
	id, err := ParseIdentifier(rawIdentifier)
	if err != nil {
		return false, err
	}
	code = strings.TrimSpace(code)
	if !s.pattern.MatchString(code) {
		s.metrics.RecordOTPVerification(false)
		return false, nil
	}

	ok, err := s.store.Consume(ctx, otpKey(id), s.opts.MaxAttempts, func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
	})
	if err != nil {
		s.logger.Error("otp store consume failed", zap.String("kind", id.Kind), zap.Error(err))
		return false, fmt.Errorf("%w: %v", ErrOTPUnavailable, err)
	}
	s.metrics.RecordOTPVerification(ok)
	return ok, nil
}

// generateCode returns a numeric code of length digits without a leading zero.
func generateCode(length int) (string, error) {
	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/metrics"
)

const defaultTagTimeout = 5 * time.Second

// TagRepository defines the authorization_cache write used by the service.
type TagRepository interface {
	Upsert(ctx context.Context, idTag, info string, at time.Time) error
}

// TagService registers user tags with the OCPP backend.
type TagService struct {
	repo    TagRepository
	metrics metrics.Recorder
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewTagService builds TagService.
func NewTagService(repo TagRepository, recorder metrics.Recorder, logger *zap.Logger) *TagService {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	return &TagService{repo: repo, metrics: recorder, logger: logger, timeout: defaultTagTimeout, now: time.Now}
}

// RegisterTag upserts idTag so chargers accept it. Failures are logged and reported as false.
// The write is detached from ctx cancellation so an abandoned request cannot interrupt it.
func (s *TagService) RegisterTag(ctx context.Context, idTag, userID, info string) bool {
	if strings.TrimSpace(info) == "" {
		info = fmt.Sprintf("VoltStartEV_User:%s", userID)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if err := s.repo.Upsert(ctx, idTag, info, s.now().UTC()); err != nil {
		s.logger.Warn("register id tag failed",
			zap.String("id_tag", idTag),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		s.metrics.RecordTagRegistration(false)
		return false
	}
	s.logger.Info("registered id tag", zap.String("id_tag", idTag), zap.String("user_id", userID))
	s.metrics.RecordTagRegistration(true)
	return true
}

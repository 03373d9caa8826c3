package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/ocpp"
	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/repository"
)

var (
	// ErrInvalidSessionRequest is returned for malformed start/stop input.
	ErrInvalidSessionRequest = errors.New("session: invalid request")
	// ErrSessionRejected is returned when the charge point refuses the command.
	ErrSessionRejected = errors.New("session: command rejected")
	// ErrSessionUnavailable hides command channel failures.
	ErrSessionUnavailable = errors.New("session: service unavailable")
	// ErrSessionNotFound is returned for unknown transactions and those started by another tag.
	ErrSessionNotFound = errors.New("session: not found")
)

// Session request statuses.
const (
	SessionPending  = "pending"
	SessionStopping = "stopping"
)

// RemoteCommander issues OCPP remote commands.
type RemoteCommander interface {
	RemoteStart(ctx context.Context, req ocpp.RemoteStartRequest) (ocpp.CommandResult, error)
	RemoteStop(ctx context.Context, req ocpp.RemoteStopRequest) (ocpp.CommandResult, error)
}

// TransactionLookup resolves SteVe transactions for remote stop.
type TransactionLookup interface {
	GetByID(ctx context.Context, id int) (*models.TransactionRecord, error)
}

// StartSessionInput is the caller's start request.
type StartSessionInput struct {
	ChargerID   string
	ConnectorID int
	UserID      string
	IDTag       string
}

// StopSessionInput is the caller's stop request. SessionID is the SteVe transaction id.
type StopSessionInput struct {
	SessionID string
	UserID    string
	IDTag     string
}

// StopResult acknowledges a stop request.
type StopResult struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// SessionService forwards session lifecycle commands to the charge point.
type SessionService struct {
	chargers     ChargerLookup
	transactions TransactionLookup
	commander    RemoteCommander
	logger       *zap.Logger
	now          func() time.Time
}

// NewSessionService builds SessionService.
func NewSessionService(chargers ChargerLookup, transactions TransactionLookup, commander RemoteCommander, logger *zap.Logger) *SessionService {
	return &SessionService{chargers: chargers, transactions: transactions, commander: commander, logger: logger, now: time.Now}
}

// StartSession requests a remote start and returns the pending session request.
func (s *SessionService) StartSession(ctx context.Context, in StartSessionInput) (*models.SessionRequest, error) {
	in.ChargerID = strings.TrimSpace(in.ChargerID)
	if in.ChargerID == "" || strings.TrimSpace(in.IDTag) == "" {
		return nil, ErrInvalidSessionRequest
	}
	if in.ConnectorID == 0 {
		in.ConnectorID = 1
	}
	if in.ConnectorID < 0 {
		return nil, ErrInvalidSessionRequest
	}

	charger, err := s.chargers.GetByID(ctx, in.ChargerID)
	if err != nil {
		return nil, err
	}
	if charger == nil {
		return nil, ErrChargerNotFound
	}

	res, err := s.commander.RemoteStart(ctx, ocpp.RemoteStartRequest{
		ChargeBoxID: in.ChargerID,
		ConnectorID: in.ConnectorID,
		IDTag:       in.IDTag,
	})
	if err != nil {
		s.logger.Error("remote start failed", zap.String("charger_id", in.ChargerID), zap.Error(err))
		return nil, ErrSessionUnavailable
	}
	if res.Status != ocpp.StatusAccepted {
		return nil, ErrSessionRejected
	}

	session := &models.SessionRequest{
		ID:          "sess_" + uuid.NewString(),
		ChargerID:   in.ChargerID,
		ConnectorID: in.ConnectorID,
		IDTag:       in.IDTag,
		StartedAt:   s.now().UTC(),
		Status:      SessionPending,
	}
	s.logger.Info("session start requested",
		zap.String("session_id", session.ID),
		zap.String("user_id", in.UserID),
		zap.String("charger_id", in.ChargerID),
		zap.String("request_id", res.RequestID),
	)
	return session, nil
}

// StopSession requests a remote stop for a running transaction started with the caller's tag.
func (s *SessionService) StopSession(ctx context.Context, in StopSessionInput) (*StopResult, error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	txID, err := strconv.Atoi(in.SessionID)
	if err != nil || txID <= 0 || strings.TrimSpace(in.IDTag) == "" {
		return nil, ErrInvalidSessionRequest
	}

	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("load transaction failed", zap.Int("transaction_id", txID), zap.Error(err))
		return nil, ErrSessionUnavailable
	}
	if tx.IDTag != in.IDTag {
		s.logger.Warn("stop requested for foreign transaction",
			zap.Int("transaction_id", txID),
			zap.String("user_id", in.UserID),
		)
		return nil, ErrSessionNotFound
	}
	if tx.StopTimestamp != nil {
		return nil, ErrSessionRejected
	}

	res, err := s.commander.RemoteStop(ctx, ocpp.RemoteStopRequest{ChargeBoxID: tx.ChargeBoxID, TransactionID: txID})
	if err != nil {
		s.logger.Error("remote stop failed", zap.Int("transaction_id", txID), zap.Error(err))
		return nil, ErrSessionUnavailable
	}
	if res.Status != ocpp.StatusAccepted {
		return nil, ErrSessionRejected
	}
	s.logger.Info("session stop requested",
		zap.Int("transaction_id", txID),
		zap.String("charger_id", tx.ChargeBoxID),
		zap.String("user_id", in.UserID),
		zap.String("request_id", res.RequestID),
	)
	return &StopResult{SessionID: in.SessionID, Status: SessionStopping}, nil
}

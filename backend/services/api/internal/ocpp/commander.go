package ocpp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemoteStartRequest asks a charge point to start charging for a tag.
type RemoteStartRequest struct {
	ChargeBoxID string
	ConnectorID int
	IDTag       string
}

// RemoteStopRequest asks a charge point to stop a transaction.
type RemoteStopRequest struct {
	ChargeBoxID   string
	TransactionID int
}

// CommandResult is the charge point's answer.
type CommandResult struct {
	RequestID string
	Status    string
}

// MockCommander stands in for the central system's command channel.
// It encodes the CALL frame, logs it and answers Accepted.
type MockCommander struct {
	logger *zap.Logger
}

// NewMockCommander returns commander.
func NewMockCommander(logger *zap.Logger) *MockCommander {
	return &MockCommander{logger: logger}
}

// RemoteStart issues RemoteStartTransaction.
func (c *MockCommander) RemoteStart(ctx context.Context, req RemoteStartRequest) (CommandResult, error) {
	if strings.TrimSpace(req.ChargeBoxID) == "" || strings.TrimSpace(req.IDTag) == "" {
		return CommandResult{}, errors.New("ocpp: charge box and id tag required")
	}
	payload := RemoteStartTransactionRequest{ConnectorID: req.ConnectorID, IDTag: req.IDTag}
	return c.dispatch(ctx, req.ChargeBoxID, ActionRemoteStartTransaction, payload)
}

// RemoteStop issues RemoteStopTransaction.
func (c *MockCommander) RemoteStop(ctx context.Context, req RemoteStopRequest) (CommandResult, error) {
	if strings.TrimSpace(req.ChargeBoxID) == "" || req.TransactionID <= 0 {
		return CommandResult{}, errors.New("ocpp: charge box and positive transaction id required")
	}
	payload := RemoteStopTransactionRequest{TransactionID: req.TransactionID}
	return c.dispatch(ctx, req.ChargeBoxID, ActionRemoteStopTransaction, payload)
}

func (c *MockCommander) dispatch(ctx context.Context, chargeBoxID, action string, payload any) (CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return CommandResult{}, err
	}

	uniqueID := uuid.NewString()
	frame, err := BuildCall(uniqueID, action, payload)
	if err != nil {
		return CommandResult{}, err
	}
	c.logger.Info("ocpp command queued (mock)",
		zap.String("charge_box_id", chargeBoxID),
		zap.String("action", action),
		zap.ByteString("frame", frame),
	)

	reply, err := BuildCallResult(uniqueID, RemoteStartStopResponse{Status: StatusAccepted})
	if err != nil {
		return CommandResult{}, err
	}
	res, err := ParseCallResult(reply)
	if err != nil {
		return CommandResult{}, err
	}
	var resp RemoteStartStopResponse
	if err := json.Unmarshal(res.Payload, &resp); err != nil {
		return CommandResult{}, err
	}
	return CommandResult{RequestID: res.UniqueID, Status: resp.Status}, nil
}

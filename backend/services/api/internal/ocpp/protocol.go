package ocpp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType values of OCPP-J frames.
const (
	MessageTypeCall       = 2
	MessageTypeCallResult = 3
	MessageTypeCallError  = 4
)

// Remote actions issued by the central system.
const (
	ActionRemoteStartTransaction = "RemoteStartTransaction"
	ActionRemoteStopTransaction  = "RemoteStopTransaction"
)

// RemoteStartStopStatus values.
const (
	StatusAccepted = "Accepted"
	StatusRejected = "Rejected"
)

// ChargePointStatus values reported in StatusNotification.
const (
	ConnectorAvailable     = "Available"
	ConnectorPreparing     = "Preparing"
	ConnectorCharging      = "Charging"
	ConnectorSuspendedEV   = "SuspendedEV"
	ConnectorSuspendedEVSE = "SuspendedEVSE"
	ConnectorFinishing     = "Finishing"
	ConnectorReserved      = "Reserved"
	ConnectorUnavailable   = "Unavailable"
	ConnectorFaulted       = "Faulted"
)

// RemoteStartTransactionRequest payload.
type RemoteStartTransactionRequest struct {
	ConnectorID int    `json:"connectorId,omitempty"`
	IDTag       string `json:"idTag"`
}

// RemoteStopTransactionRequest payload. OCPP 1.6 transaction ids are integers.
type RemoteStopTransactionRequest struct {
	TransactionID int `json:"transactionId"`
}

// RemoteStartStopResponse is the charge point's answer to both remote commands.
type RemoteStartStopResponse struct {
	Status string `json:"status"`
}

// CallResult represents a decoded CALLRESULT frame.
type CallResult struct {
	UniqueID string
	Payload  json.RawMessage
}

// BuildCall builds a CALL frame.
func BuildCall(uniqueID, action string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	frame := []any{MessageTypeCall, uniqueID, action, json.RawMessage(body)}
	return json.Marshal(frame)
}

// BuildCallResult builds a CALLRESULT frame.
func BuildCallResult(uniqueID string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	frame := []any{MessageTypeCallResult, uniqueID, json.RawMessage(body)}
	return json.Marshal(frame)
}

// ParseCallResult decodes a CALLRESULT frame.
func ParseCallResult(data []byte) (*CallResult, error) {
	var array []json.RawMessage
	if err := json.Unmarshal(data, &array); err != nil {
		return nil, err
	}
	if len(array) < 3 {
		return nil, errors.New("ocpp: malformed frame")
	}

	var msgType int
	if err := json.Unmarshal(array[0], &msgType); err != nil {
		return nil, err
	}
	if msgType != MessageTypeCallResult {
		return nil, fmt.Errorf("ocpp: unexpected message type %d", msgType)
	}

	res := &CallResult{Payload: array[2]}
	if err := json.Unmarshal(array[1], &res.UniqueID); err != nil {
		return nil, fmt.Errorf("ocpp: read unique id: %w", err)
	}
	return res, nil
}

package models

import "time"

// Session statuses derived from transaction rows.
const (
	SessionActive    = "active"
	SessionFailed    = "failed"
	SessionCompleted = "completed"
)

// ChargingSession is the client projection of an OCPP transaction.
type ChargingSession struct {
	ID              string  `json:"id"`
	ChargerID       string  `json:"chargerId"`
	ChargerName     string  `json:"chargerName"`
	Date            string  `json:"date"`
	Duration        string  `json:"duration"`
	EnergyDelivered float64 `json:"energyDelivered"`
	Cost            float64 `json:"cost"`
	Status          string  `json:"status"`
}

// TransactionRecord is a raw "transaction" row joined with the charge box name.
type TransactionRecord struct {
	ID             string
	ChargeBoxID    string
	ChargerName    string
	IDTag          string
	StartTimestamp time.Time
	StopTimestamp  *time.Time
	MeterStart     string
	MeterStop      string
	ErrorCode      *string
}

// SessionRequest is an accepted remote start awaiting the charge point.
type SessionRequest struct {
	ID          string    `json:"id"`
	ChargerID   string    `json:"chargerId"`
	ConnectorID int       `json:"connectorId"`
	IDTag       string    `json:"idTag"`
	StartedAt   time.Time `json:"startedAt"`
	Status      string    `json:"status"`
}

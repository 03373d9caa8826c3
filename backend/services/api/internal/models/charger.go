package models

import "time"

// Charger statuses exposed to clients.
const (
	ChargerAvailable = "Available"
	ChargerOccupied  = "Occupied"
	ChargerOffline   = "Offline"
	ChargerFaulted   = "Faulted"
)

// Connector types exposed to clients.
const (
	ConnectorType2   = "Type 2"
	ConnectorCCS2    = "CCS2"
	ConnectorCHAdeMO = "CHAdeMO"
	ConnectorType1   = "Type 1"
)

// Charger is the client projection of a charge point.
type Charger struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Status         string   `json:"status"`
	Power          float64  `json:"power"`
	Type           string   `json:"type"`
	RatePerUnit    float64  `json:"ratePerUnit"`
	Distance       *float64 `json:"distance,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	ReviewCount    *int     `json:"reviewCount,omitempty"`
	OperatingHours *string  `json:"operatingHours,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
	Saved          *bool    `json:"saved,omitempty"`
}

// ChargerFilter narrows the availability listing.
type ChargerFilter struct {
	Lat           *float64
	Lng           *float64
	MaxDistanceKm *float64
	MinPower      *float64
	Type          string
}

// ChargeBoxRecord is a raw charge_box row joined with its first connector.
// Numeric columns arrive as text so driver-specific decimal types never leak.
type ChargeBoxRecord struct {
	ID              string
	Name            string
	Vendor          string
	Power           string
	MaxCurrent      string
	Latitude        string
	Longitude       string
	BoxStatus       string
	ConnectorStatus string
	ConnectorType   string
	LastHeartbeat   *time.Time
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money is rendered as a JSON number, matching the rest of the contract.
	decimal.MarshalJSONWithoutQuotes = true
}

// Wallet transaction kinds.
const (
	WalletTopUp  = "topup"
	WalletCharge = "charge"
)

// WalletTransaction is one ledger row of a user's wallet.
type WalletTransaction struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"-"`
	Kind      string          `db:"kind" json:"type"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Method    string          `db:"method" json:"method,omitempty"`
	Reference string          `db:"reference" json:"reference"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// Wallet is the balance view returned to clients.
type Wallet struct {
	Balance      decimal.Decimal     `json:"balance"`
	Currency     string              `json:"currency"`
	Transactions []WalletTransaction `json:"transactions"`
}

// Tariff describes the flat price per kWh.
type Tariff struct {
	Name        string  `json:"name"`
	PricePerKWh float64 `json:"pricePerKWh"`
	Currency    string  `json:"currency"`
}

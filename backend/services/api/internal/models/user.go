package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment method kinds a user can store.
const (
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodWallet = "wallet"
)

// User is the account created on first successful OTP verification.
type User struct {
	ID             string          `db:"id" json:"id"`
	Name           string          `db:"name" json:"name"`
	Email          *string         `db:"email" json:"email,omitempty"`
	Phone          *string         `db:"phone" json:"phone,omitempty"`
	IDTag          string          `db:"id_tag" json:"idTag"`
	WalletBalance  decimal.Decimal `db:"wallet_balance" json:"walletBalance"`
	IsVerified     bool            `db:"is_verified" json:"isVerified"`
	EVDetails      *EVDetails      `json:"evDetails,omitempty"`
	SavedChargers  []string        `json:"savedChargers"`
	PaymentMethods []PaymentMethod `json:"paymentMethods"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// EVDetails describes the user's vehicle.
type EVDetails struct {
	Model           string  `json:"model"`
	BatteryCapacity float64 `json:"batteryCapacity"`
	VehicleNumber   *string `json:"vehicleNumber,omitempty"`
}

// PaymentMethod is a tokenised payment instrument reference.
type PaymentMethod struct {
	ID    string `db:"id" json:"id"`
	Last4 string `db:"last4" json:"last4"`
	Type  string `db:"type" json:"type"`
}

// ProfileUpdate carries the mutable profile fields. Nil pointers are left untouched.
type ProfileUpdate struct {
	Name      *string    `json:"name"`
	Email     *string    `json:"email"`
	EVDetails *EVDetails `json:"evDetails"`
}

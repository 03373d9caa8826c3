package service

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/AttriPardeep/VoltStartEV-Backend/backend/services/api/internal/models"
)

const (
	defaultRatePerUnit = 12.0
	defaultCurrency    = "INR"
)

// TariffService provides the flat energy price and cost math.
type TariffService struct {
	tariff models.Tariff
}

// NewTariffService returns service instance. Non-positive rates fall back to the default.
func NewTariffService(ratePerUnit float64, currency string) *TariffService {
	if ratePerUnit <= 0 {
		ratePerUnit = defaultRatePerUnit
	}
	if currency == "" {
		currency = defaultCurrency
	}
	return &TariffService{
		tariff: models.Tariff{
			Name:        "Default",
			PricePerKWh: ratePerUnit,
			Currency:    currency,
		},
	}
}

// ActiveTariff returns the tariff currently applied.
func (s *TariffService) ActiveTariff() models.Tariff {
	return s.tariff
}

// RatePerUnit is the price of one kWh.
func (s *TariffService) RatePerUnit() float64 {
	return s.tariff.PricePerKWh
}

// Currency of all prices.
func (s *TariffService) Currency() string {
	return s.tariff.Currency
}

// Cost prices energyKWh at the active rate, rounded to 2 places.
func (s *TariffService) Cost(energyKWh float64) float64 {
	if math.IsNaN(energyKWh) || math.IsInf(energyKWh, 0) {
		return 0
	}
	cost := decimal.NewFromFloat(energyKWh).
		Mul(decimal.NewFromFloat(s.tariff.PricePerKWh)).
		Round(2)
	f, _ := cost.Float64()
	return f
}

package service

import "math"

// CalculateDeltaEnergy computes delivered energy from start and stop meter readings.
// Non-finite readings count as no energy.
func CalculateDeltaEnergy(start, stop float64) float64 {
	delta := stop - start
	if math.IsNaN(delta) || math.IsInf(delta, 0) || delta < 0 {
		return 0
	}
	return round2(delta)
}

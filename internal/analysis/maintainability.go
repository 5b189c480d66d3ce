package analysis

import (
	"math"

	"anamnesis/internal/entities"
)

// MaintainabilityIndex computes the classical MI formula, clamped to
// [0, 100]: MI = max(0, (171 - 5.2*ln(V) - 0.23*CC - 16.2*ln(LOC)) * 100/171)
// (spec §4.3).
func MaintainabilityIndex(halsteadVolume float64, cyclomatic int, linesOfCode int) float64 {
	v := math.Max(halsteadVolume, 1)
	loc := math.Max(float64(linesOfCode), 1)

	raw := 171 - 5.2*math.Log(v) - 0.23*float64(cyclomatic) - 16.2*math.Log(loc)
	scaled := raw * 100 / 171
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 100 {
		scaled = 100
	}
	return scaled
}

// BandFor classifies a maintainability index into a letter-grade band.
func BandFor(mi float64) entities.MaintainabilityBand {
	switch {
	case mi >= 85:
		return entities.BandA
	case mi >= 70:
		return entities.BandB
	case mi >= 50:
		return entities.BandC
	case mi >= 25:
		return entities.BandD
	default:
		return entities.BandF
	}
}

package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"anamnesis/internal/entities"
)

func TestMaintainabilityIndexBounds(t *testing.T) {
	mi := MaintainabilityIndex(1, 1, 1)
	assert.GreaterOrEqual(t, mi, 0.0)
	assert.LessOrEqual(t, mi, 100.0)

	highComplexity := MaintainabilityIndex(10000, 200, 5000)
	assert.GreaterOrEqual(t, highComplexity, 0.0)
}

func TestBandForThresholds(t *testing.T) {
	assert.Equal(t, entities.BandA, BandFor(90))
	assert.Equal(t, entities.BandB, BandFor(75))
	assert.Equal(t, entities.BandC, BandFor(55))
	assert.Equal(t, entities.BandD, BandFor(30))
	assert.Equal(t, entities.BandF, BandFor(10))
}

package abtest

import (
	"math"

	"github.com/ignite/travel-crm/internal/domain"
)

const (
	// WinTolerance is the relative margin a variant must beat the other by.
	WinTolerance = 1.05
	// NoBaselineImprovement is reported when the loser scored zero.
	NoBaselineImprovement = 100

	baseConfidence      = 50
	confidencePerSample = 2
	maxConfidence       = 95
)

// Decision is the outcome of comparing two variants.
type Decision struct {
	Winner             domain.Winner
	ImprovementPercent int
	Confidence         int
}

// Decide compares a and b on criteria.
func Decide(criteria domain.WinningCriteria, a, b domain.CampaignMetrics) Decision {
	va, vb := float64(criteria.Value(a)), float64(criteria.Value(b))

	d := Decision{
		Winner:     domain.WinnerTie,
		Confidence: min(maxConfidence, baseConfidence+confidencePerSample*min(a.Sent, b.Sent)),
	}
	switch {
	case va > vb*WinTolerance:
		d.Winner = domain.WinnerA
		d.ImprovementPercent = improvement(va, vb)
	case vb > va*WinTolerance:
		d.Winner = domain.WinnerB
		d.ImprovementPercent = improvement(vb, va)
	}
	return d
}

func improvement(winner, loser float64) int {
	if loser == 0 {
		return NoBaselineImprovement
	}
	return int(math.Round((winner - loser) / loser * 100))
}

package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/ignite/travel-crm/internal/domain"
)

// Score builds the predictive score for one contact against a tenant
// pattern. It is a pure function of its inputs.
func Score(a domain.ContactActivity, p domain.ConversionPattern, now time.Time) (domain.PredictiveScore, error) {
	stage := a.Contact.Stage
	if stage == domain.StageLost {
		return domain.PredictiveScore{}, ErrLostContact
	}
	if stage.Index() == 0 {
		return domain.PredictiveScore{}, fmt.Errorf("%w: %d", ErrInvalidStage, int(stage))
	}

	in := SignalInput{Activity: a, Pattern: p, Now: now}
	signals := ComputeSignals(in)
	predicted := WeightedScore(signals)
	probability := ConversionProbability(predicted)

	return domain.PredictiveScore{
		ContactID:             a.Contact.ID,
		CurrentScore:          domain.ClampScore(a.Contact.LeadScore),
		PredictedScore:        predicted,
		ConversionProbability: probability,
		PredictedDaysToClose:  DaysToClose(stage, p.AvgDaysToClose),
		RiskLevel:             Risk(probability),
		Confidence:            Confidence(a.InteractionCount, p.HasHistory(), in.DaysSinceCreated()),
		Signals:               signals,
		Recommendations:       Recommend(in, signals),
		GeneratedAt:           now,
	}, nil
}

// WeightedScore is round(Σ value·weight / Σ weight).
func WeightedScore(signals []domain.Signal) int {
	var sum, weights int
	for _, s := range signals {
		sum += s.Value * s.Weight
		weights += s.Weight
	}
	if weights == 0 {
		return 0
	}
	return clamp(round(float64(sum) / float64(weights)))
}

// ConversionProbability skews the predicted score and caps it below certainty.
func ConversionProbability(predicted int) int {
	return min(round(float64(predicted)*ProbabilitySkew), MaxProbability)
}

// DaysToClose scales the tenant's average time to close by stage depth.
func DaysToClose(stage domain.PipelineStage, avgDays float64) int {
	idx := stage.Index()
	switch {
	case stage == domain.StageWon:
		return 0
	case idx >= LateStageIndex:
		return max(MinLateStageDays, round(avgDays*LateStageFraction))
	case idx >= MidLateStageIndex:
		return round(avgDays * MidLateFraction)
	case idx >= MidStageIndex:
		return round(avgDays * MidStageFraction)
	}
	return round(avgDays)
}

// Risk buckets a conversion probability.
func Risk(probability int) domain.RiskLevel {
	switch {
	case probability >= LowRiskProbability:
		return domain.RiskLow
	case probability >= MediumRiskProbability:
		return domain.RiskMedium
	}
	return domain.RiskHigh
}

// Confidence grows with the contact's interactions and age and with the
// tenant having any conversion history.
func Confidence(interactions int, hasHistory bool, daysSinceCreated float64) int {
	c := BaseConfidence + min(interactions*ConfidencePerInteraction, MaxInteractionConfidence)
	if hasHistory {
		c += HistoryConfidenceBonus
	}
	c += min(round(math.Max(daysSinceCreated, 0)), MaxTenureConfidence)
	return min(c, MaxConfidence)
}

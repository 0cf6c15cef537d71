package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversionPattern is a tenant's baseline derived from converted contacts.
// It is recomputed per call and never stored.
type ConversionPattern struct {
	AvgInteractions float64  `json:"avg_interactions"`
	AvgDaysToClose  float64  `json:"avg_days_to_close"`
	AvgScoreAtClose float64  `json:"avg_score_at_close"`
	AvgTravelers    float64  `json:"avg_travelers"`
	AvgBudget       float64  `json:"avg_budget"`
	TopSources      []string `json:"top_sources"`
	TopDestinations []string `json:"top_destinations"`
	// SampleSize is the number of converted contacts behind the averages.
	SampleSize int `json:"sample_size"`
}

// HasHistory reports whether the tenant has any converted contacts.
func (p ConversionPattern) HasHistory() bool { return p.SampleSize > 0 }

// SignalDirection classifies a signal's contribution.
type SignalDirection string

const (
	SignalPositive SignalDirection = "positive"
	SignalNeutral  SignalDirection = "neutral"
	SignalNegative SignalDirection = "negative"
)

// Signal is one weighted, explainable input to a predictive score.
type Signal struct {
	Name        string          `json:"name"`
	Value       int             `json:"value"`
	Weight      int             `json:"weight"`
	Direction   SignalDirection `json:"direction"`
	Description string          `json:"description"`
}

// RiskLevel buckets a conversion probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PredictiveScore is the scorer's output for one contact.
type PredictiveScore struct {
	ContactID             uuid.UUID `json:"contact_id"`
	CurrentScore          int       `json:"current_score"`
	PredictedScore        int       `json:"predicted_score"`
	ConversionProbability int       `json:"conversion_probability"`
	PredictedDaysToClose  int       `json:"predicted_days_to_close"`
	RiskLevel             RiskLevel `json:"risk_level"`
	Confidence            int       `json:"confidence"`
	Signals               []Signal  `json:"signals"`
	Recommendations       []string  `json:"recommendations"`
	GeneratedAt           time.Time `json:"generated_at"`
}

// SignalByName returns the named signal, if present.
func (p PredictiveScore) SignalByName(name string) (Signal, bool) {
	for _, s := range p.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

package scoring

import "github.com/ignite/travel-crm/internal/domain"

// ConversionStats are the raw aggregates over a tenant's converted contacts
// (stage won, reserved or paid). Averages are nil when SQL AVG returned NULL.
type ConversionStats struct {
	ConvertedCount  int
	AvgScore        *float64
	AvgDaysToClose  *float64
	AvgTravelers    *float64
	AvgBudget       *float64
	AvgInteractions *float64
	TopSources      []string
	TopDestinations []string
}

// BuildPattern turns raw aggregates into a ConversionPattern, substituting
// the cold-tenant defaults for anything missing.
func BuildPattern(stats ConversionStats) domain.ConversionPattern {
	p := domain.ConversionPattern{
		AvgInteractions: DefaultAvgInteractions,
		AvgDaysToClose:  DefaultAvgDaysToClose,
		AvgScoreAtClose: DefaultAvgScoreAtClose,
		AvgTravelers:    DefaultAvgTravelers,
		AvgBudget:       DefaultAvgBudget,
		TopSources:      topN(stats.TopSources),
		TopDestinations: topN(stats.TopDestinations),
	}
	if stats.ConvertedCount <= 0 {
		return p
	}

	p.SampleSize = stats.ConvertedCount
	if stats.AvgScore != nil {
		p.AvgScoreAtClose = *stats.AvgScore
	}
	if stats.AvgDaysToClose != nil {
		p.AvgDaysToClose = *stats.AvgDaysToClose
	}
	if stats.AvgTravelers != nil {
		p.AvgTravelers = *stats.AvgTravelers
	}
	if stats.AvgBudget != nil {
		p.AvgBudget = *stats.AvgBudget
	}
	if stats.AvgInteractions != nil {
		p.AvgInteractions = *stats.AvgInteractions
	}
	return p
}

func topN(values []string) []string {
	out := make([]string, 0, TopListSize)
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, v)
		if len(out) == TopListSize {
			break
		}
	}
	return out
}

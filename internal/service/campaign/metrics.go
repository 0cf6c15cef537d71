package campaign

import (
	"math"

	"github.com/ignite/travel-crm/internal/domain"
)

// Calculate derives rates from a stats row. Every rate is guarded against
// a zero denominator.
func Calculate(s domain.CampaignStats) domain.CampaignMetrics {
	delivered := max(s.TotalSent-s.TotalBounced, 0)
	return domain.CampaignMetrics{
		CampaignID:      s.CampaignID,
		TemplateID:      s.TemplateID,
		TemplateName:    s.TemplateName,
		Sent:            s.TotalSent,
		Delivered:       delivered,
		Opened:          s.TotalOpened,
		Clicked:         s.TotalClicked,
		Bounced:         s.TotalBounced,
		Unsubscribed:    s.TotalUnsubscribed,
		OpenRate:        percent(s.TotalOpened, delivered),
		ClickRate:       percent(s.TotalClicked, delivered),
		BounceRate:      percent(s.TotalBounced, s.TotalSent),
		CTR:             percent(s.TotalClicked, s.TotalOpened),
		UnsubscribeRate: percent(s.TotalUnsubscribed, delivered),
	}
}

// Summarize averages per-campaign rates without volume weighting and picks
// the template with the highest open rate. Ties keep the earlier campaign.
func Summarize(metrics []domain.CampaignMetrics) domain.CampaignSummary {
	sum := domain.CampaignSummary{TotalCampaigns: len(metrics)}
	if len(metrics) == 0 {
		return sum
	}

	var openSum, clickSum, bounceSum, ctrSum int
	for i, m := range metrics {
		sum.TotalSent += m.Sent
		sum.TotalDelivered += m.Delivered
		sum.TotalOpened += m.Opened
		sum.TotalClicked += m.Clicked
		openSum += m.OpenRate
		clickSum += m.ClickRate
		bounceSum += m.BounceRate
		ctrSum += m.CTR

		if sum.BestPerforming == nil || m.OpenRate > sum.BestPerforming.OpenRate {
			sum.BestPerforming = &domain.TemplatePerformance{
				TemplateID:   metrics[i].TemplateID,
				TemplateName: metrics[i].TemplateName,
				CampaignID:   metrics[i].CampaignID,
				OpenRate:     m.OpenRate,
			}
		}
	}

	n := float64(len(metrics))
	sum.AvgOpenRate = int(math.Round(float64(openSum) / n))
	sum.AvgClickRate = int(math.Round(float64(clickSum) / n))
	sum.AvgBounceRate = int(math.Round(float64(bounceSum) / n))
	sum.AvgCTR = int(math.Round(float64(ctrSum) / n))
	return sum
}

func percent(num, den int) int {
	if den <= 0 {
		return 0
	}
	return int(math.Round(float64(num) / float64(den) * 100))
}

package campaign_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name  string
		stats domain.CampaignStats
		want  domain.CampaignMetrics
	}{
		{
			name:  "everything bounced",
			stats: domain.CampaignStats{TotalSent: 5, TotalBounced: 5},
			want:  domain.CampaignMetrics{Sent: 5, Bounced: 5, BounceRate: 100},
		},
		{
			name:  "typical send",
			stats: domain.CampaignStats{TotalSent: 200, TotalBounced: 10, TotalOpened: 57, TotalClicked: 19, TotalUnsubscribed: 2},
			want: domain.CampaignMetrics{
				Sent: 200, Delivered: 190, Opened: 57, Clicked: 19, Bounced: 10, Unsubscribed: 2,
				OpenRate: 30, ClickRate: 10, BounceRate: 5, CTR: 33, UnsubscribeRate: 1,
			},
		},
		{
			name:  "clicks without opens",
			stats: domain.CampaignStats{TotalSent: 10, TotalClicked: 3},
			want:  domain.CampaignMetrics{Sent: 10, Delivered: 10, Clicked: 3, ClickRate: 30},
		},
		{
			name:  "bounces exceed sends",
			stats: domain.CampaignStats{TotalSent: 2, TotalBounced: 3, TotalOpened: 1},
			want:  domain.CampaignMetrics{Sent: 2, Bounced: 3, Opened: 1, BounceRate: 150, CTR: 0},
		},
		{
			name:  "nothing sent",
			stats: domain.CampaignStats{},
			want:  domain.CampaignMetrics{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, campaign.Calculate(tt.stats))
		})
	}
}

func TestSummarize(t *testing.T) {
	metrics := []domain.CampaignMetrics{
		campaign.Calculate(domain.CampaignStats{CampaignID: "c1", TemplateID: "t-spring", TemplateName: "Spring", TotalSent: 100, TotalOpened: 40, TotalClicked: 10}),
		campaign.Calculate(domain.CampaignStats{CampaignID: "c2", TemplateID: "t-summer", TemplateName: "Summer", TotalSent: 1000, TotalOpened: 100, TotalClicked: 50}),
		campaign.Calculate(domain.CampaignStats{CampaignID: "c3", TemplateID: "t-autumn", TemplateName: "Autumn", TotalSent: 10, TotalOpened: 4}),
	}

	got := campaign.Summarize(metrics)
	assert.Equal(t, 3, got.TotalCampaigns)
	assert.Equal(t, 1110, got.TotalSent)
	assert.Equal(t, 144, got.TotalOpened)
	// (40 + 10 + 40) / 3 unweighted
	assert.Equal(t, 30, got.AvgOpenRate)
	// (10 + 5 + 0) / 3
	assert.Equal(t, 5, got.AvgClickRate)
	// (25 + 50 + 0) / 3
	assert.Equal(t, 25, got.AvgCTR)
	if assert.NotNil(t, got.BestPerforming) {
		assert.Equal(t, "t-spring", got.BestPerforming.TemplateID, "tie keeps the earlier campaign")
		assert.Equal(t, 40, got.BestPerforming.OpenRate)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := campaign.Summarize(nil)
	assert.Equal(t, domain.CampaignSummary{}, got)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates campaign engagement events.
type EventType string

const (
	EventSent         EventType = "sent"
	EventDelivered    EventType = "delivered"
	EventOpened       EventType = "opened"
	EventClicked      EventType = "clicked"
	EventBounced      EventType = "bounced"
	EventUnsubscribed EventType = "unsubscribed"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventSent, EventDelivered, EventOpened, EventClicked, EventBounced, EventUnsubscribed:
		return true
	}
	return false
}

// CampaignStats holds the running counters for one campaign. Counters only
// ever increase.
type CampaignStats struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	CampaignID        string    `json:"campaign_id"`
	TemplateID        string    `json:"template_id"`
	TemplateName      string    `json:"template_name"`
	TotalSent         int       `json:"total_sent"`
	TotalDelivered    int       `json:"total_delivered"`
	TotalOpened       int       `json:"total_opened"`
	TotalClicked      int       `json:"total_clicked"`
	TotalBounced      int       `json:"total_bounced"`
	TotalUnsubscribed int       `json:"total_unsubscribed"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CampaignEvent is a single recorded engagement. Storage keeps at most one
// row per (campaign, contact, event type).
type CampaignEvent struct {
	TenantID   uuid.UUID      `json:"tenant_id"`
	CampaignID string         `json:"campaign_id"`
	ContactID  uuid.UUID      `json:"contact_id"`
	EventType  EventType      `json:"event_type"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// CampaignMetrics are the derived rates for one campaign. Rates are whole
// percentages.
type CampaignMetrics struct {
	CampaignID      string `json:"campaign_id"`
	TemplateID      string `json:"template_id"`
	TemplateName    string `json:"template_name"`
	Sent            int    `json:"sent"`
	Delivered       int    `json:"delivered"`
	Opened          int    `json:"opened"`
	Clicked         int    `json:"clicked"`
	Bounced         int    `json:"bounced"`
	Unsubscribed    int    `json:"unsubscribed"`
	OpenRate        int    `json:"open_rate"`
	ClickRate       int    `json:"click_rate"`
	BounceRate      int    `json:"bounce_rate"`
	CTR             int    `json:"ctr"`
	UnsubscribeRate int    `json:"unsubscribe_rate"`
}

// TemplatePerformance names a template and its open rate.
type TemplatePerformance struct {
	TemplateID   string `json:"template_id"`
	TemplateName string `json:"template_name"`
	CampaignID   string `json:"campaign_id"`
	OpenRate     int    `json:"open_rate"`
}

// CampaignSummary aggregates all of a tenant's campaigns. Averages are
// unweighted means of per-campaign rates.
type CampaignSummary struct {
	TotalCampaigns int                  `json:"total_campaigns"`
	TotalSent      int                  `json:"total_sent"`
	TotalDelivered int                  `json:"total_delivered"`
	TotalOpened    int                  `json:"total_opened"`
	TotalClicked   int                  `json:"total_clicked"`
	AvgOpenRate    int                  `json:"avg_open_rate"`
	AvgClickRate   int                  `json:"avg_click_rate"`
	AvgBounceRate  int                  `json:"avg_bounce_rate"`
	AvgCTR         int                  `json:"avg_ctr"`
	BestPerforming *TemplatePerformance `json:"best_performing,omitempty"`
}

// TimelinePoint is one day of event counts.
type TimelinePoint struct {
	Date    string `json:"date"` // YYYY-MM-DD, UTC
	Sent    int    `json:"sent"`
	Opened  int    `json:"opened"`
	Clicked int    `json:"clicked"`
}

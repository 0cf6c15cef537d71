package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/abtest"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

// LeadScorer is implemented by *scoring.Service.
type LeadScorer interface {
	PredictScore(ctx context.Context, tenantID, contactID uuid.UUID) (*domain.PredictiveScore, error)
	TopPredictions(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.PredictiveScore, error)
}

// CampaignAnalytics is implemented by *campaign.Service.
type CampaignAnalytics interface {
	TrackEvent(ctx context.Context, tenantID uuid.UUID, in campaign.TrackInput) (campaign.Tracked, error)
	RegisterCampaignSend(ctx context.Context, tenantID uuid.UUID, in campaign.SendInput) error
	CampaignMetrics(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignMetrics, error)
	ListMetrics(ctx context.Context, tenantID uuid.UUID) ([]domain.CampaignMetrics, error)
	CampaignsSummary(ctx context.Context, tenantID uuid.UUID) (domain.CampaignSummary, error)
	TimelineMetrics(ctx context.Context, tenantID uuid.UUID) ([]domain.TimelinePoint, error)
	RecentEvents(ctx context.Context, tenantID uuid.UUID, campaignID string, limit int) ([]domain.CampaignEvent, error)
}

// ABTests is implemented by *abtest.Service.
type ABTests interface {
	Create(ctx context.Context, tenantID uuid.UUID, in abtest.CreateInput) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.ABTest, error)
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTest, error)
	Start(ctx context.Context, tenantID uuid.UUID, id int64) error
	RegisterVariantSend(ctx context.Context, tenantID uuid.UUID, id int64, out abtest.SendOutcome) error
	Evaluate(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTestResult, error)
}

// LinkSigner is implemented by *tracking.Signer.
type LinkSigner interface {
	OpenURL(tenantID uuid.UUID, campaignID string, contactID uuid.UUID) string
	ClickURL(tenantID uuid.UUID, campaignID string, contactID uuid.UUID, target string) string
	UnsubscribeURL(tenantID uuid.UUID, campaignID string, contactID uuid.UUID) string
}

// Handlers contains the HTTP handlers for the analytics API.
type Handlers struct {
	leads     LeadScorer
	campaigns CampaignAnalytics
	abtests   ABTests
	links     LinkSigner
}

// NewHandlers creates a new Handlers instance. links may be nil when no
// tracking signing key is configured.
func NewHandlers(leads LeadScorer, campaigns CampaignAnalytics, abtests ABTests, links LinkSigner) *Handlers {
	return &Handlers{leads: leads, campaigns: campaigns, abtests: abtests, links: links}
}

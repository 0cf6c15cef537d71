package campaign

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/travel-crm/internal/domain"
)

// Repository defines the data access contract for campaign analytics.
// Implementations must be safe for concurrent use.
type Repository interface {
	// RecordEvent inserts the event and, only if it was new, increments the
	// matching counter (creating the stats row at 1 if needed). Both happen
	// atomically. Returns false when the event already existed.
	RecordEvent(ctx context.Context, e domain.CampaignEvent) (bool, error)

	// RecordSend upserts the stats row with the send outcome counts and
	// inserts one idempotent sent event per contact.
	RecordSend(ctx context.Context, tenantID uuid.UUID, in SendInput) error

	// Stats returns one campaign's counters. Returns ErrNotFound if the
	// campaign has no stats row.
	Stats(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignStats, error)

	// ListStats returns every campaign's counters, oldest first.
	ListStats(ctx context.Context, tenantID uuid.UUID) ([]domain.CampaignStats, error)

	// Timeline returns per-day sent/opened/clicked event counts since the
	// given instant, ascending by date. Days without events are absent.
	Timeline(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]domain.TimelinePoint, error)

	// RecentEvents returns the newest events for a campaign.
	RecentEvents(ctx context.Context, tenantID uuid.UUID, campaignID string, limit int) ([]domain.CampaignEvent, error)
}

// TrackInput is a single engagement to record.
type TrackInput struct {
	CampaignID string
	ContactID  uuid.UUID
	EventType  domain.EventType
	Metadata   map[string]any
	// OccurredAt is when the engagement happened. Zero, or a time after
	// now, records the event at now.
	OccurredAt time.Time
}

// SendInput is the outcome of one campaign send.
type SendInput struct {
	CampaignID   string
	TemplateID   string
	TemplateName string
	ContactIDs   []uuid.UUID
	SentCount    int
	FailedCount  int
}

// Tracked reports what TrackEvent did.
type Tracked struct {
	Duplicate bool `json:"duplicate"`
}

package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

const (
	// TimelineDays is the trailing window reported by TimelineMetrics.
	TimelineDays = 30

	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Service implements campaign event tracking and reporting. All public
// methods are safe for concurrent use if the underlying repository is.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a campaign service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// TrackEvent records one engagement. Repeating the same (campaign, contact,
// event type) is a no-op reported as Duplicate.
func (s *Service) TrackEvent(ctx context.Context, tenantID uuid.UUID, in TrackInput) (Tracked, error) {
	if !in.EventType.Valid() {
		return Tracked{}, fmt.Errorf("%w: %q", ErrUnknownEventType, in.EventType)
	}
	if strings.TrimSpace(in.CampaignID) == "" {
		return Tracked{}, fmt.Errorf("%w: campaign id is required", ErrInvalidInput)
	}
	if in.ContactID == uuid.Nil {
		return Tracked{}, fmt.Errorf("%w: contact id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	at := in.OccurredAt.UTC()
	if in.OccurredAt.IsZero() || at.After(now) {
		at = now
	}

	inserted, err := s.repo.RecordEvent(ctx, domain.CampaignEvent{
		TenantID:   tenantID,
		CampaignID: in.CampaignID,
		ContactID:  in.ContactID,
		EventType:  in.EventType,
		Metadata:   in.Metadata,
		CreatedAt:  at,
	})
	if err != nil {
		return Tracked{}, fmt.Errorf("record %s event: %w", in.EventType, err)
	}
	if !inserted {
		logger.Debug("duplicate campaign event ignored",
			"campaign_id", in.CampaignID,
			"contact_id", in.ContactID.String(),
			"event_type", string(in.EventType))
	}
	return Tracked{Duplicate: !inserted}, nil
}

// RegisterCampaignSend stores a send's outcome counts and one sent event
// per recipient.
func (s *Service) RegisterCampaignSend(ctx context.Context, tenantID uuid.UUID, in SendInput) error {
	if strings.TrimSpace(in.CampaignID) == "" {
		return fmt.Errorf("%w: campaign id is required", ErrInvalidInput)
	}
	if in.SentCount < 0 || in.FailedCount < 0 {
		return fmt.Errorf("%w: counts must be non-negative", ErrInvalidInput)
	}
	for _, id := range in.ContactIDs {
		if id == uuid.Nil {
			return fmt.Errorf("%w: nil contact id", ErrInvalidInput)
		}
	}

	if err := s.repo.RecordSend(ctx, tenantID, in); err != nil {
		return fmt.Errorf("record send %s: %w", in.CampaignID, err)
	}
	logger.Info("campaign send registered",
		"tenant_id", tenantID.String(),
		"campaign_id", in.CampaignID,
		"recipients", len(in.ContactIDs),
		"sent", in.SentCount,
		"failed", in.FailedCount)
	return nil
}

// CampaignMetrics returns the rates for one campaign, or nil when the
// campaign has no stats yet.
func (s *Service) CampaignMetrics(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignMetrics, error) {
	stats, err := s.repo.Stats(ctx, tenantID, campaignID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := Calculate(*stats)
	return &m, nil
}

// ListMetrics returns metrics for every campaign, oldest first.
func (s *Service) ListMetrics(ctx context.Context, tenantID uuid.UUID) ([]domain.CampaignMetrics, error) {
	rows, err := s.repo.ListStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CampaignMetrics, 0, len(rows))
	for _, r := range rows {
		out = append(out, Calculate(r))
	}
	return out, nil
}

// CampaignsSummary aggregates all of the tenant's campaigns.
func (s *Service) CampaignsSummary(ctx context.Context, tenantID uuid.UUID) (domain.CampaignSummary, error) {
	metrics, err := s.ListMetrics(ctx, tenantID)
	if err != nil {
		return domain.CampaignSummary{}, err
	}
	return Summarize(metrics), nil
}

// TimelineMetrics returns daily sent/opened/clicked counts over the last
// TimelineDays days.
func (s *Service) TimelineMetrics(ctx context.Context, tenantID uuid.UUID) ([]domain.TimelinePoint, error) {
	since := s.now().UTC().AddDate(0, 0, -TimelineDays)
	points, err := s.repo.Timeline(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	if points == nil {
		points = []domain.TimelinePoint{}
	}
	return points, nil
}

// RecentEvents returns the newest events recorded for a campaign.
func (s *Service) RecentEvents(ctx context.Context, tenantID uuid.UUID, campaignID string, limit int) ([]domain.CampaignEvent, error) {
	switch {
	case limit <= 0:
		limit = defaultEventLimit
	case limit > maxEventLimit:
		limit = maxEventLimit
	}
	return s.repo.RecentEvents(ctx, tenantID, campaignID, limit)
}

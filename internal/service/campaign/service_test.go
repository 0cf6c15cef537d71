package campaign_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

type eventKey struct {
	campaignID string
	contactID  uuid.UUID
	eventType  domain.EventType
}

// memRepo is an in-memory campaign repository for unit testing. It mirrors
// the storage guarantees: unique events and conditional counter bumps.
type memRepo struct {
	mu     sync.Mutex
	events map[eventKey]domain.CampaignEvent
	stats  map[string]*domain.CampaignStats
	order  []string
	since  time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{
		events: make(map[eventKey]domain.CampaignEvent),
		stats:  make(map[string]*domain.CampaignStats),
	}
}

func (m *memRepo) row(tenantID uuid.UUID, campaignID string) *domain.CampaignStats {
	s, ok := m.stats[campaignID]
	if !ok {
		s = &domain.CampaignStats{TenantID: tenantID, CampaignID: campaignID}
		m.stats[campaignID] = s
		m.order = append(m.order, campaignID)
	}
	return s
}

func (m *memRepo) RecordEvent(_ context.Context, e domain.CampaignEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := eventKey{e.CampaignID, e.ContactID, e.EventType}
	if _, dup := m.events[k]; dup {
		return false, nil
	}
	m.events[k] = e
	s := m.row(e.TenantID, e.CampaignID)
	switch e.EventType {
	case domain.EventSent:
		s.TotalSent++
	case domain.EventDelivered:
		s.TotalDelivered++
	case domain.EventOpened:
		s.TotalOpened++
	case domain.EventClicked:
		s.TotalClicked++
	case domain.EventBounced:
		s.TotalBounced++
	case domain.EventUnsubscribed:
		s.TotalUnsubscribed++
	}
	return true, nil
}

func (m *memRepo) RecordSend(_ context.Context, tenantID uuid.UUID, in campaign.SendInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.row(tenantID, in.CampaignID)
	s.TemplateID, s.TemplateName = in.TemplateID, in.TemplateName
	s.TotalSent = max(s.TotalSent, in.SentCount)
	s.TotalBounced = max(s.TotalBounced, in.FailedCount)
	for _, id := range in.ContactIDs {
		m.events[eventKey{in.CampaignID, id, domain.EventSent}] = domain.CampaignEvent{
			TenantID: tenantID, CampaignID: in.CampaignID, ContactID: id, EventType: domain.EventSent,
		}
	}
	return nil
}

func (m *memRepo) Stats(_ context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stats[campaignID]
	if !ok || s.TenantID != tenantID {
		return nil, campaign.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) ListStats(_ context.Context, tenantID uuid.UUID) ([]domain.CampaignStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CampaignStats
	for _, id := range m.order {
		if s := m.stats[id]; s.TenantID == tenantID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memRepo) Timeline(_ context.Context, tenantID uuid.UUID, since time.Time) ([]domain.TimelinePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.since = since
	byDay := map[string]*domain.TimelinePoint{}
	for _, e := range m.events {
		if e.TenantID != tenantID || e.CreatedAt.Before(since) {
			continue
		}
		day := e.CreatedAt.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &domain.TimelinePoint{Date: day}
			byDay[day] = p
		}
		switch e.EventType {
		case domain.EventSent:
			p.Sent++
		case domain.EventOpened:
			p.Opened++
		case domain.EventClicked:
			p.Clicked++
		}
	}
	var out []domain.TimelinePoint
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memRepo) RecentEvents(_ context.Context, _ uuid.UUID, campaignID string, limit int) ([]domain.CampaignEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CampaignEvent
	for k, e := range m.events {
		if k.campaignID == campaignID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

var fixedNow = time.Date(2026, 5, 10, 9, 30, 0, 0, time.UTC)

func newService(repo campaign.Repository) *campaign.Service {
	return campaign.NewService(repo).WithClock(func() time.Time { return fixedNow })
}

func TestTrackEvent_Idempotent(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant, contact := uuid.New(), uuid.New()

	in := campaign.TrackInput{CampaignID: "spring-promo", ContactID: contact, EventType: domain.EventOpened}
	res, err := svc.TrackEvent(ctx, tenant, in)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	res, err = svc.TrackEvent(ctx, tenant, in)
	require.NoError(t, err)
	assert.True(t, res.Duplicate)

	m, err := svc.CampaignMetrics(ctx, tenant, "spring-promo")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Opened)

	// a different event type for the same contact still counts
	_, err = svc.TrackEvent(ctx, tenant, campaign.TrackInput{CampaignID: "spring-promo", ContactID: contact, EventType: domain.EventClicked})
	require.NoError(t, err)
	m, err = svc.CampaignMetrics(ctx, tenant, "spring-promo")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Clicked)
}

func TestTrackEvent_Validation(t *testing.T) {
	svc := newService(newMemRepo())
	ctx := context.Background()

	_, err := svc.TrackEvent(ctx, uuid.New(), campaign.TrackInput{CampaignID: "c", ContactID: uuid.New(), EventType: "complained"})
	assert.ErrorIs(t, err, campaign.ErrUnknownEventType)

	_, err = svc.TrackEvent(ctx, uuid.New(), campaign.TrackInput{CampaignID: " ", ContactID: uuid.New(), EventType: domain.EventOpened})
	assert.ErrorIs(t, err, campaign.ErrInvalidInput)

	_, err = svc.TrackEvent(ctx, uuid.New(), campaign.TrackInput{CampaignID: "c", EventType: domain.EventOpened})
	assert.ErrorIs(t, err, campaign.ErrInvalidInput)
}

func TestRegisterCampaignSend(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant := uuid.New()
	contacts := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	err := svc.RegisterCampaignSend(ctx, tenant, campaign.SendInput{
		CampaignID: "newsletter-may", TemplateID: "tpl-1", TemplateName: "May newsletter",
		ContactIDs: contacts, SentCount: 3, FailedCount: 1,
	})
	require.NoError(t, err)

	m, err := svc.CampaignMetrics(ctx, tenant, "newsletter-may")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Sent)
	assert.Equal(t, 2, m.Delivered)
	assert.Equal(t, 33, m.BounceRate)
	assert.Equal(t, "May newsletter", m.TemplateName)

	assert.ErrorIs(t, svc.RegisterCampaignSend(ctx, tenant, campaign.SendInput{CampaignID: "x", SentCount: -1}), campaign.ErrInvalidInput)
	assert.ErrorIs(t, svc.RegisterCampaignSend(ctx, tenant, campaign.SendInput{CampaignID: "x", ContactIDs: []uuid.UUID{uuid.Nil}}), campaign.ErrInvalidInput)
}

func TestCampaignMetrics_MissingIsNil(t *testing.T) {
	m, err := newService(newMemRepo()).CampaignMetrics(context.Background(), uuid.New(), "never-sent")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCampaignsSummary(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant := uuid.New()

	require.NoError(t, svc.RegisterCampaignSend(ctx, tenant, campaign.SendInput{CampaignID: "a", TemplateID: "t-a", SentCount: 10}))
	require.NoError(t, svc.RegisterCampaignSend(ctx, tenant, campaign.SendInput{CampaignID: "b", TemplateID: "t-b", SentCount: 10}))
	for i := 0; i < 5; i++ {
		_, err := svc.TrackEvent(ctx, tenant, campaign.TrackInput{CampaignID: "b", ContactID: uuid.New(), EventType: domain.EventOpened})
		require.NoError(t, err)
	}

	sum, err := svc.CampaignsSummary(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.TotalCampaigns)
	assert.Equal(t, 25, sum.AvgOpenRate)
	require.NotNil(t, sum.BestPerforming)
	assert.Equal(t, "t-b", sum.BestPerforming.TemplateID)
}

func TestTimelineMetrics(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant := uuid.New()

	pts, err := svc.TimelineMetrics(ctx, tenant)
	require.NoError(t, err)
	assert.NotNil(t, pts)
	assert.Empty(t, pts)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), repo.since)

	_, err = svc.TrackEvent(ctx, tenant, campaign.TrackInput{CampaignID: "c", ContactID: uuid.New(), EventType: domain.EventClicked})
	require.NoError(t, err)
	pts, err = svc.TimelineMetrics(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, domain.TimelinePoint{Date: "2026-05-10", Clicked: 1}, pts[0])
}

func TestRecentEvents_ClampsLimit(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant := uuid.New()
	for i := 0; i < 3; i++ {
		_, err := svc.TrackEvent(ctx, tenant, campaign.TrackInput{CampaignID: "c", ContactID: uuid.New(), EventType: domain.EventDelivered})
		require.NoError(t, err)
	}
	evs, err := svc.RecentEvents(ctx, tenant, "c", 0)
	require.NoError(t, err)
	assert.Len(t, evs, 3)
}

func TestTrackEvent_RecordsOccurredAt(t *testing.T) {
	repo := newMemRepo()
	svc := newService(repo)
	ctx := context.Background()
	tenant := uuid.New()

	late := fixedNow.Add(-36 * time.Hour)
	_, err := svc.TrackEvent(ctx, tenant, campaign.TrackInput{
		CampaignID: "c", ContactID: uuid.New(), EventType: domain.EventOpened, OccurredAt: late,
	})
	require.NoError(t, err)
	_, err = svc.TrackEvent(ctx, tenant, campaign.TrackInput{
		CampaignID: "c", ContactID: uuid.New(), EventType: domain.EventClicked, OccurredAt: fixedNow.Add(time.Hour),
	})
	require.NoError(t, err)

	pts, err := svc.TimelineMetrics(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, []domain.TimelinePoint{
		{Date: "2026-05-08", Opened: 1},
		{Date: "2026-05-10", Clicked: 1},
	}, pts)
}

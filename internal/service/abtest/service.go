package abtest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

var tracer = otel.Tracer("github.com/ignite/travel-crm/internal/service/abtest")

// Service implements the A/B test lifecycle.
type Service struct {
	repo      Repository
	campaigns CampaignAnalytics
	now       func() time.Time
}

// NewService creates an A/B test service.
func NewService(repo Repository, campaigns CampaignAnalytics) *Service {
	return &Service{repo: repo, campaigns: campaigns, now: time.Now}
}

// WithClock returns a copy of s that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// VariantCampaignID is the campaign id assigned to a variant when the
// caller doesn't supply one.
func VariantCampaignID(testID int64, k domain.VariantKey) string {
	return fmt.Sprintf("abtest_%d_%s", testID, k)
}

// Create validates and stores a new draft test and returns its id.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, in CreateInput) (int64, error) {
	if err := validate(&in); err != nil {
		return 0, err
	}

	id, err := s.repo.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("reserve ab test id: %w", err)
	}
	if in.VariantA.CampaignID == "" {
		in.VariantA.CampaignID = VariantCampaignID(id, domain.VariantA)
	}
	if in.VariantB.CampaignID == "" {
		in.VariantB.CampaignID = VariantCampaignID(id, domain.VariantB)
	}

	t := &domain.ABTest{
		ID:              id,
		TenantID:        tenantID,
		Name:            strings.TrimSpace(in.Name),
		VariantA:        in.VariantA,
		VariantB:        in.VariantB,
		WinningCriteria: in.WinningCriteria,
		Status:          domain.ABTestDraft,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return 0, fmt.Errorf("insert ab test: %w", err)
	}
	logger.Info("ab test created", "tenant_id", tenantID.String(), "ab_test_id", id, "criteria", string(t.WinningCriteria))
	return id, nil
}

func validate(in *CreateInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.VariantA.TemplateID == "" || in.VariantB.TemplateID == "" {
		return fmt.Errorf("%w: both variants need a template", ErrInvalidInput)
	}
	if in.VariantA.CampaignID != "" && in.VariantA.CampaignID == in.VariantB.CampaignID {
		return fmt.Errorf("%w: variants must measure different campaigns", ErrInvalidInput)
	}
	if in.WinningCriteria == "" {
		in.WinningCriteria = domain.CriteriaOpenRate
	}
	if !in.WinningCriteria.Valid() {
		return fmt.Errorf("%w: unknown winning criteria %q", ErrInvalidInput, in.WinningCriteria)
	}

	seen := make(map[uuid.UUID]struct{}, len(in.VariantA.ContactIDs))
	for _, id := range in.VariantA.ContactIDs {
		seen[id] = struct{}{}
	}
	for _, id := range in.VariantB.ContactIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: contact %s is in both variants", ErrInvalidInput, id)
		}
	}
	return nil
}

// List returns the tenant's tests.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]domain.ABTest, error) {
	return s.repo.List(ctx, tenantID)
}

// Get returns one test.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTest, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Start moves a draft test to running.
func (s *Service) Start(ctx context.Context, tenantID uuid.UUID, id int64) error {
	t, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if t.Status != domain.ABTestDraft {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, t.Status, domain.ABTestRunning)
	}
	return s.repo.MarkRunning(ctx, tenantID, id, s.now().UTC())
}

// RegisterVariantSend records a send of one variant against its campaign.
// Only running tests accept sends.
func (s *Service) RegisterVariantSend(ctx context.Context, tenantID uuid.UUID, id int64, out SendOutcome) error {
	t, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if t.Status != domain.ABTestRunning {
		return fmt.Errorf("%w: sends require a running test, got %s", ErrInvalidTransition, t.Status)
	}
	if out.Variant != domain.VariantA && out.Variant != domain.VariantB {
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidInput, out.Variant)
	}

	v := t.Variant(out.Variant)
	return s.campaigns.RegisterCampaignSend(ctx, tenantID, campaign.SendInput{
		CampaignID:   v.CampaignID,
		TemplateID:   v.TemplateID,
		TemplateName: v.TemplateName,
		ContactIDs:   v.ContactIDs,
		SentCount:    out.SentCount,
		FailedCount:  out.FailedCount,
	})
}

// Evaluate decides the test from its variants' current metrics and marks it
// completed. It returns nil when the test or either variant's metrics are
// missing. Re-evaluating recomputes from the counters.
func (s *Service) Evaluate(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTestResult, error) {
	ctx, span := tracer.Start(ctx, "abtest.Evaluate")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()), attribute.Int64("ab_test.id", id))

	t, err := s.repo.Get(ctx, tenantID, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if t.Status == domain.ABTestDraft {
		return nil, fmt.Errorf("%w: draft tests cannot be evaluated", ErrInvalidTransition)
	}

	a, err := s.campaigns.CampaignMetrics(ctx, tenantID, t.VariantA.CampaignID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("variant A metrics: %w", err)
	}
	b, err := s.campaigns.CampaignMetrics(ctx, tenantID, t.VariantB.CampaignID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("variant B metrics: %w", err)
	}
	if a == nil || b == nil {
		return nil, nil
	}

	d := Decide(t.WinningCriteria, *a, *b)
	res := &domain.ABTestResult{
		TestID:             t.ID,
		WinningCriteria:    t.WinningCriteria,
		Winner:             d.Winner,
		ImprovementPercent: d.ImprovementPercent,
		Confidence:         d.Confidence,
		VariantA:           *a,
		VariantB:           *b,
		EvaluatedAt:        s.now().UTC(),
	}
	if err := s.repo.SaveResult(ctx, tenantID, *res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("save ab test result: %w", err)
	}

	span.SetAttributes(attribute.String("ab_test.winner", string(d.Winner)))
	logger.Info("ab test evaluated",
		"tenant_id", tenantID.String(),
		"ab_test_id", id,
		"winner", string(d.Winner),
		"improvement_percent", d.ImprovementPercent,
		"confidence", d.Confidence)
	return res, nil
}

// RunningTests returns running tests across tenants for the auto-evaluator.
func (s *Service) RunningTests(ctx context.Context) ([]domain.ABTest, error) {
	return s.repo.ListRunning(ctx)
}

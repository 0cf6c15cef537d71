package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/logger"
)

var tracer = otel.Tracer("github.com/ignite/travel-crm/internal/service/scoring")

// Service scores contacts for one tenant at a time. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	repo         Repository
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLimits sets the default and maximum TopPredictions limit.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// NewService creates a scoring service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		now:          time.Now,
		defaultLimit: DefaultTopLimit,
		maxLimit:     MaxTopLimit,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Pattern derives the tenant's conversion baseline.
func (s *Service) Pattern(ctx context.Context, tenantID uuid.UUID) (domain.ConversionPattern, error) {
	stats, err := s.repo.ConversionStats(ctx, tenantID)
	if err != nil {
		return domain.ConversionPattern{}, fmt.Errorf("conversion stats: %w", err)
	}
	return BuildPattern(stats), nil
}

// PredictScore scores a single contact. A missing contact is ErrNotFound;
// a lost contact is ErrLostContact.
func (s *Service) PredictScore(ctx context.Context, tenantID, contactID uuid.UUID) (*domain.PredictiveScore, error) {
	ctx, span := tracer.Start(ctx, "scoring.PredictScore")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant.id", tenantID.String()),
		attribute.String("contact.id", contactID.String()),
	)

	var (
		activity *domain.ContactActivity
		pattern  domain.ConversionPattern
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.repo.ContactActivity(gctx, tenantID, contactID)
		if err != nil {
			return err
		}
		activity = a
		return nil
	})
	g.Go(func() error {
		p, err := s.Pattern(gctx, tenantID)
		if err != nil {
			return err
		}
		pattern = p
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	score, err := Score(*activity, pattern, s.now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("score.probability", score.ConversionProbability))
	return &score, nil
}

// TopPredictions scores the tenant's open pipeline and returns the limit
// contacts most likely to convert. A contact that fails to score is logged
// and left out; it never fails the batch.
func (s *Service) TopPredictions(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.PredictiveScore, error) {
	ctx, span := tracer.Start(ctx, "scoring.TopPredictions")
	defer span.End()

	limit = s.clampLimit(limit)
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()), attribute.Int("limit", limit))

	pattern, err := s.Pattern(ctx, tenantID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	candidates, err := s.repo.OpenContacts(ctx, tenantID, min(limit*2, CandidatePoolSize))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("open contacts: %w", err)
	}

	now := s.now()
	scores := make([]domain.PredictiveScore, 0, len(candidates))
	for _, c := range candidates {
		score, err := Score(c, pattern, now)
		if err != nil {
			logger.Warn("skipping contact in batch ranking",
				"tenant_id", tenantID.String(),
				"contact_id", c.Contact.ID.String(),
				"error", err)
			continue
		}
		scores = append(scores, score)
	}

	Rank(scores)
	if len(scores) > limit {
		scores = scores[:limit]
	}
	span.SetAttributes(attribute.Int("ranked", len(scores)))
	return scores, nil
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	return min(limit, s.maxLimit)
}

// Rank orders scores by conversion probability, then predicted score, then
// contact id so the order is deterministic.
func Rank(scores []domain.PredictiveScore) {
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.ConversionProbability != b.ConversionProbability {
			return a.ConversionProbability > b.ConversionProbability
		}
		if a.PredictedScore != b.PredictedScore {
			return a.PredictedScore > b.PredictedScore
		}
		return a.ContactID.String() < b.ContactID.String()
	})
}

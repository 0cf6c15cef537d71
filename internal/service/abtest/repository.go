package abtest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

// Repository defines the data access contract for A/B tests.
// Implementations must be safe for concurrent use.
type Repository interface {
	// NextID reserves an id for a test about to be inserted.
	NextID(ctx context.Context) (int64, error)

	// Insert stores a new test. t.ID must come from NextID.
	Insert(ctx context.Context, t *domain.ABTest) error

	// Get returns one test. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTest, error)

	// List returns the tenant's tests, newest first.
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.ABTest, error)

	// ListRunning returns running tests across all tenants.
	ListRunning(ctx context.Context) ([]domain.ABTest, error)

	// MarkRunning moves a draft test to running. Returns
	// ErrInvalidTransition if the test is no longer a draft.
	MarkRunning(ctx context.Context, tenantID uuid.UUID, id int64, at time.Time) error

	// SaveResult marks the test completed with the given outcome. The
	// first completion time is kept on re-evaluation.
	SaveResult(ctx context.Context, tenantID uuid.UUID, r domain.ABTestResult) error
}

// CampaignAnalytics is the slice of the campaign service the evaluator
// needs. *campaign.Service satisfies it.
type CampaignAnalytics interface {
	CampaignMetrics(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignMetrics, error)
	RegisterCampaignSend(ctx context.Context, tenantID uuid.UUID, in campaign.SendInput) error
}

// CreateInput describes a new test.
type CreateInput struct {
	Name            string                 `json:"name"`
	VariantA        domain.Variant         `json:"variant_a"`
	VariantB        domain.Variant         `json:"variant_b"`
	WinningCriteria domain.WinningCriteria `json:"winning_criteria"`
}

// SendOutcome is the result of sending one variant.
type SendOutcome struct {
	Variant     domain.VariantKey `json:"variant"`
	SentCount   int               `json:"sent_count"`
	FailedCount int               `json:"failed_count"`
}

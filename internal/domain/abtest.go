package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WinningCriteria names the metric an A/B test is decided on.
type WinningCriteria string

const (
	CriteriaOpenRate  WinningCriteria = "open_rate"
	CriteriaClickRate WinningCriteria = "click_rate"
	CriteriaCTR       WinningCriteria = "ctr"
)

// Valid reports whether c is a supported criterion.
func (c WinningCriteria) Valid() bool {
	return c == CriteriaOpenRate || c == CriteriaClickRate || c == CriteriaCTR
}

// Value reads the criterion's metric from m.
func (c WinningCriteria) Value(m CampaignMetrics) int {
	switch c {
	case CriteriaClickRate:
		return m.ClickRate
	case CriteriaCTR:
		return m.CTR
	default:
		return m.OpenRate
	}
}

// ABTestStatus is the test lifecycle state. Transitions only move forward:
// draft → running → completed.
type ABTestStatus string

const (
	ABTestDraft     ABTestStatus = "draft"
	ABTestRunning   ABTestStatus = "running"
	ABTestCompleted ABTestStatus = "completed"
)

// Winner is the outcome of an evaluation.
type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "tie"
)

// VariantKey identifies one arm of a test.
type VariantKey string

const (
	VariantA VariantKey = "A"
	VariantB VariantKey = "B"
)

// ParseVariantKey accepts "A"/"B" in either case.
func ParseVariantKey(s string) (VariantKey, error) {
	switch s {
	case "A", "a":
		return VariantA, nil
	case "B", "b":
		return VariantB, nil
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// Variant is one arm of an A/B test. CampaignID is the stored reference to
// the campaign whose counters measure this arm.
type Variant struct {
	TemplateID   string      `json:"template_id"`
	TemplateName string      `json:"template_name,omitempty"`
	Subject      string      `json:"subject"`
	ContactIDs   []uuid.UUID `json:"contact_ids"`
	CampaignID   string      `json:"campaign_id"`
}

// ABTest is a two-variant campaign experiment.
type ABTest struct {
	ID                 int64           `json:"id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	Name               string          `json:"name"`
	VariantA           Variant         `json:"variant_a"`
	VariantB           Variant         `json:"variant_b"`
	WinningCriteria    WinningCriteria `json:"winning_criteria"`
	Status             ABTestStatus    `json:"status"`
	Winner             Winner          `json:"winner,omitempty"`
	ImprovementPercent int             `json:"improvement_percent"`
	Confidence         int             `json:"confidence"`
	CreatedAt          time.Time       `json:"created_at"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
}

// Variant returns the arm named by k.
func (t ABTest) Variant(k VariantKey) Variant {
	if k == VariantB {
		return t.VariantB
	}
	return t.VariantA
}

// ABTestResult is the outcome of evaluating a test.
type ABTestResult struct {
	TestID             int64           `json:"test_id"`
	WinningCriteria    WinningCriteria `json:"winning_criteria"`
	Winner             Winner          `json:"winner"`
	ImprovementPercent int             `json:"improvement_percent"`
	Confidence         int             `json:"confidence"`
	VariantA           CampaignMetrics `json:"variant_a"`
	VariantB           CampaignMetrics `json:"variant_b"`
	EvaluatedAt        time.Time       `json:"evaluated_at"`
}

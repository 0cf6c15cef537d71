package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/jsoncol"
	"github.com/ignite/travel-crm/internal/service/abtest"
)

// ABTestRepo implements abtest.Repository against PostgreSQL. Variant
// configs are stored as JSONB.
type ABTestRepo struct{ db *sql.DB }

// NewABTestRepo creates a Postgres-backed A/B test repository.
func NewABTestRepo(db *sql.DB) *ABTestRepo { return &ABTestRepo{db: db} }

const abTestColumns = `
	id, tenant_id, name, variant_a, variant_b, winning_criteria, status,
	COALESCE(winner,''), improvement_percent, confidence,
	created_at, started_at, completed_at`

func scanABTest(row rowScanner) (*domain.ABTest, error) {
	var (
		t                  domain.ABTest
		rawA, rawB         []byte
		criteria, status   string
		winner             string
		started, completed sql.NullTime
	)
	if err := row.Scan(
		&t.ID, &t.TenantID, &t.Name, &rawA, &rawB, &criteria, &status,
		&winner, &t.ImprovementPercent, &t.Confidence,
		&t.CreatedAt, &started, &completed,
	); err != nil {
		return nil, err
	}
	if err := jsoncol.Decode("variant_a", rawA, &t.VariantA); err != nil {
		return nil, fmt.Errorf("ab test %d: %w", t.ID, err)
	}
	if err := jsoncol.Decode("variant_b", rawB, &t.VariantB); err != nil {
		return nil, fmt.Errorf("ab test %d: %w", t.ID, err)
	}
	t.WinningCriteria = domain.WinningCriteria(criteria)
	t.Status = domain.ABTestStatus(status)
	t.Winner = domain.Winner(winner)
	t.StartedAt = nullTime(started)
	t.CompletedAt = nullTime(completed)
	return &t, nil
}

func (r *ABTestRepo) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('ab_tests_id_seq')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("next ab test id: %w", err)
	}
	return id, nil
}

func (r *ABTestRepo) Insert(ctx context.Context, t *domain.ABTest) error {
	a, err := json.Marshal(t.VariantA)
	if err != nil {
		return fmt.Errorf("encode variant_a: %w", err)
	}
	b, err := json.Marshal(t.VariantB)
	if err != nil {
		return fmt.Errorf("encode variant_b: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ab_tests (id, tenant_id, name, variant_a, variant_b, winning_criteria, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.TenantID, t.Name, a, b, string(t.WinningCriteria), string(t.Status), t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ab test: %w", err)
	}
	return nil
}

func (r *ABTestRepo) Get(ctx context.Context, tenantID uuid.UUID, id int64) (*domain.ABTest, error) {
	t, err := scanABTest(r.db.QueryRowContext(ctx,
		`SELECT `+abTestColumns+` FROM ab_tests WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	))
	if err == sql.ErrNoRows {
		return nil, abtest.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ab test: %w", err)
	}
	return t, nil
}

func (r *ABTestRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.ABTest, error) {
	return r.list(ctx,
		`SELECT `+abTestColumns+` FROM ab_tests WHERE tenant_id = $1 ORDER BY created_at DESC, id DESC`,
		tenantID,
	)
}

func (r *ABTestRepo) ListRunning(ctx context.Context) ([]domain.ABTest, error) {
	return r.list(ctx,
		`SELECT `+abTestColumns+` FROM ab_tests WHERE status = 'running' ORDER BY started_at ASC, id ASC`,
	)
}

func (r *ABTestRepo) list(ctx context.Context, q string, args ...any) ([]domain.ABTest, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list ab tests: %w", err)
	}
	defer rows.Close()

	var out []domain.ABTest
	for rows.Next() {
		t, err := scanABTest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ab test: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *ABTestRepo) MarkRunning(ctx context.Context, tenantID uuid.UUID, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ab_tests SET status = 'running', started_at = $3
		WHERE tenant_id = $1 AND id = $2 AND status = 'draft'
	`, tenantID, id, at)
	if err != nil {
		return fmt.Errorf("start ab test: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("start ab test rows affected: %w", err)
	}
	if n == 0 {
		return abtest.ErrInvalidTransition
	}
	return nil
}

func (r *ABTestRepo) SaveResult(ctx context.Context, tenantID uuid.UUID, res domain.ABTestResult) error {
	out, err := r.db.ExecContext(ctx, `
		UPDATE ab_tests SET
			status = 'completed',
			winner = $3,
			improvement_percent = $4,
			confidence = $5,
			completed_at = COALESCE(completed_at, $6)
		WHERE tenant_id = $1 AND id = $2 AND status IN ('running', 'completed')
	`, tenantID, res.TestID, string(res.Winner), res.ImprovementPercent, res.Confidence, res.EvaluatedAt)
	if err != nil {
		return fmt.Errorf("save ab test result: %w", err)
	}
	n, err := out.RowsAffected()
	if err != nil {
		return fmt.Errorf("save ab test result rows affected: %w", err)
	}
	if n == 0 {
		return abtest.ErrInvalidTransition
	}
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/scoring"
)

// ContactRepo implements scoring.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

const contactActivityColumns = `
	c.id, c.tenant_id, c.pipeline_stage, c.lead_score, c.is_hot_lead,
	COALESCE(c.source,''), COALESCE(c.email,''), COALESCE(c.phone,''),
	COALESCE(c.interested_destination,''), COALESCE(c.travel_type,''),
	c.travel_start_date, c.travel_end_date, c.num_travelers, c.budget_min, c.budget_max,
	c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM interactions i WHERE i.contact_id = c.id),
	(SELECT MAX(i.created_at) FROM interactions i WHERE i.contact_id = c.id),
	(SELECT COUNT(*) FROM tasks t WHERE t.contact_id = c.id AND t.status = 'completed')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContactActivity(row rowScanner) (*domain.ContactActivity, error) {
	var (
		a                      domain.ContactActivity
		stage                  string
		start, end, lastAction sql.NullTime
		travelers              sql.NullInt64
		budgetMin, budgetMax   sql.NullFloat64
	)
	c := &a.Contact
	if err := row.Scan(
		&c.ID, &c.TenantID, &stage, &c.LeadScore, &c.IsHotLead,
		&c.Source, &c.Email, &c.Phone,
		&c.InterestedDestination, &c.TravelType,
		&start, &end, &travelers, &budgetMin, &budgetMax,
		&c.CreatedAt, &c.UpdatedAt,
		&a.InteractionCount, &lastAction, &a.CompletedTasks,
	); err != nil {
		return nil, err
	}

	// an unrecognised stage is left invalid; the scorer rejects it per contact
	c.Stage, _ = domain.ParseStage(stage)
	c.LeadScore = domain.ClampScore(c.LeadScore)
	c.TravelStartDate = nullTime(start)
	c.TravelEndDate = nullTime(end)
	if travelers.Valid {
		n := int(travelers.Int64)
		c.NumTravelers = &n
	}
	c.BudgetMin = nullFloat(budgetMin)
	c.BudgetMax = nullFloat(budgetMax)
	a.LastInteractionAt = nullTime(lastAction)
	return &a, nil
}

func (r *ContactRepo) ContactActivity(ctx context.Context, tenantID, contactID uuid.UUID) (*domain.ContactActivity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+contactActivityColumns+`
		FROM contacts c
		WHERE c.tenant_id = $1 AND c.id = $2`,
		tenantID, contactID,
	)
	a, err := scanContactActivity(row)
	if err == sql.ErrNoRows {
		return nil, scoring.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get contact activity: %w", err)
	}
	return a, nil
}

func (r *ContactRepo) OpenContacts(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.ContactActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+contactActivityColumns+`
		FROM contacts c
		WHERE c.tenant_id = $1 AND c.pipeline_stage NOT IN ('won', 'lost')
		ORDER BY c.lead_score DESC, c.created_at ASC
		LIMIT $2`,
		tenantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list open contacts: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactActivity
	for rows.Next() {
		a, err := scanContactActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func closedStageNames() pq.StringArray {
	names := make(pq.StringArray, 0, len(domain.ClosedStages))
	for _, s := range domain.ClosedStages {
		names = append(names, s.String())
	}
	return names
}

func (r *ContactRepo) ConversionStats(ctx context.Context, tenantID uuid.UUID) (scoring.ConversionStats, error) {
	var (
		stats                          scoring.ConversionStats
		score, days, travelers, budget sql.NullFloat64
		interactions                   sql.NullFloat64
	)
	stages := closedStageNames()

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       AVG(lead_score)::float8,
		       AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 86400)::float8,
		       AVG(num_travelers)::float8,
		       AVG(COALESCE(budget_max, budget_min, 0))::float8
		FROM contacts
		WHERE tenant_id = $1 AND pipeline_stage = ANY($2)
	`, tenantID, stages).Scan(&stats.ConvertedCount, &score, &days, &travelers, &budget)
	if err != nil {
		return stats, fmt.Errorf("conversion averages: %w", err)
	}
	if stats.ConvertedCount == 0 {
		return stats, nil
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT AVG(cnt)::float8 FROM (
			SELECT COUNT(i.id) AS cnt
			FROM contacts c
			LEFT JOIN interactions i ON i.contact_id = c.id
			WHERE c.tenant_id = $1 AND c.pipeline_stage = ANY($2)
			GROUP BY c.id
		) per_contact
	`, tenantID, stages).Scan(&interactions)
	if err != nil {
		return stats, fmt.Errorf("conversion interactions: %w", err)
	}

	stats.AvgScore = nullFloat(score)
	stats.AvgDaysToClose = nullFloat(days)
	stats.AvgTravelers = nullFloat(travelers)
	stats.AvgBudget = nullFloat(budget)
	stats.AvgInteractions = nullFloat(interactions)

	if stats.TopSources, err = r.topValues(ctx, tenantID, stages, "source"); err != nil {
		return stats, err
	}
	if stats.TopDestinations, err = r.topValues(ctx, tenantID, stages, "interested_destination"); err != nil {
		return stats, err
	}
	return stats, nil
}

// topValues returns the most frequent non-empty values of column among
// converted contacts. column is always a package constant.
func (r *ContactRepo) topValues(ctx context.Context, tenantID uuid.UUID, stages pq.StringArray, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %[1]s
		FROM contacts
		WHERE tenant_id = $1 AND pipeline_stage = ANY($2)
		  AND %[1]s IS NOT NULL AND %[1]s <> ''
		GROUP BY %[1]s
		ORDER BY COUNT(*) DESC, %[1]s ASC
		LIMIT $3
	`, column), tenantID, stages, scoring.TopListSize)
	if err != nil {
		return nil, fmt.Errorf("top %s: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan top %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/jsoncol"
	"github.com/ignite/travel-crm/internal/service/campaign"
)

// counterColumns maps event types to their CampaignStats counter. Only
// these literals are ever interpolated into SQL.
var counterColumns = map[domain.EventType]string{
	domain.EventSent:         "total_sent",
	domain.EventDelivered:    "total_delivered",
	domain.EventOpened:       "total_opened",
	domain.EventClicked:      "total_clicked",
	domain.EventBounced:      "total_bounced",
	domain.EventUnsubscribed: "total_unsubscribed",
}

// CampaignRepo implements campaign.Repository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) RecordEvent(ctx context.Context, e domain.CampaignEvent) (bool, error) {
	column, ok := counterColumns[e.EventType]
	if !ok {
		return false, fmt.Errorf("%w: %q", campaign.ErrUnknownEventType, e.EventType)
	}
	metadata, err := jsoncol.Encode(e.Metadata)
	if err != nil {
		return false, fmt.Errorf("encode event metadata: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO campaign_events (tenant_id, campaign_id, contact_id, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (campaign_id, contact_id, event_type) DO NOTHING
	`, e.TenantID, e.CampaignID, e.ContactID, string(e.EventType), metadata, e.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert event rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	res, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO campaign_stats (tenant_id, campaign_id, %[1]s)
		VALUES ($1, $2, 1)
		ON CONFLICT (campaign_id) DO UPDATE
		SET %[1]s = campaign_stats.%[1]s + 1, updated_at = NOW()
		WHERE campaign_stats.tenant_id = EXCLUDED.tenant_id
	`, column), e.TenantID, e.CampaignID)
	if err != nil {
		return false, fmt.Errorf("increment %s: %w", column, err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return false, fmt.Errorf("increment %s rows affected: %w", column, err)
	}
	if n == 0 {
		return false, fmt.Errorf("increment %s for %s: %w", column, e.CampaignID, campaign.ErrTenantMismatch)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit event: %w", err)
	}
	return true, nil
}

func (r *CampaignRepo) RecordSend(ctx context.Context, tenantID uuid.UUID, in campaign.SendInput) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO campaign_stats (tenant_id, campaign_id, template_id, template_name, total_sent, total_bounced)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (campaign_id) DO UPDATE SET
			template_id   = EXCLUDED.template_id,
			template_name = EXCLUDED.template_name,
			total_sent    = GREATEST(campaign_stats.total_sent, EXCLUDED.total_sent),
			total_bounced = GREATEST(campaign_stats.total_bounced, EXCLUDED.total_bounced),
			updated_at    = NOW()
		WHERE campaign_stats.tenant_id = EXCLUDED.tenant_id
	`, tenantID, in.CampaignID, in.TemplateID, in.TemplateName, in.SentCount, in.FailedCount)
	if err != nil {
		return fmt.Errorf("upsert campaign stats: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upsert campaign stats rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("upsert %s: %w", in.CampaignID, campaign.ErrTenantMismatch)
	}

	if len(in.ContactIDs) > 0 {
		ids := make(pq.StringArray, len(in.ContactIDs))
		for i, id := range in.ContactIDs {
			ids[i] = id.String()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO campaign_events (tenant_id, campaign_id, contact_id, event_type, metadata, created_at)
			SELECT $1, $2, contact_id, 'sent', '{}'::jsonb, NOW()
			FROM unnest($3::uuid[]) AS contact_id
			ON CONFLICT (campaign_id, contact_id, event_type) DO NOTHING
		`, tenantID, in.CampaignID, ids)
		if err != nil {
			return fmt.Errorf("insert sent events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit send: %w", err)
	}
	return nil
}

const statsColumns = `
	tenant_id, campaign_id, COALESCE(template_id,''), COALESCE(template_name,''),
	total_sent, total_delivered, total_opened, total_clicked, total_bounced, total_unsubscribed,
	created_at, updated_at`

func scanStats(row rowScanner) (domain.CampaignStats, error) {
	var s domain.CampaignStats
	err := row.Scan(
		&s.TenantID, &s.CampaignID, &s.TemplateID, &s.TemplateName,
		&s.TotalSent, &s.TotalDelivered, &s.TotalOpened, &s.TotalClicked, &s.TotalBounced, &s.TotalUnsubscribed,
		&s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

func (r *CampaignRepo) Stats(ctx context.Context, tenantID uuid.UUID, campaignID string) (*domain.CampaignStats, error) {
	s, err := scanStats(r.db.QueryRowContext(ctx,
		`SELECT `+statsColumns+` FROM campaign_stats WHERE tenant_id = $1 AND campaign_id = $2`,
		tenantID, campaignID,
	))
	if err == sql.ErrNoRows {
		return nil, campaign.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign stats: %w", err)
	}
	return &s, nil
}

func (r *CampaignRepo) ListStats(ctx context.Context, tenantID uuid.UUID) ([]domain.CampaignStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+statsColumns+` FROM campaign_stats WHERE tenant_id = $1 ORDER BY created_at ASC, campaign_id ASC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaign stats: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignStats
	for rows.Next() {
		s, err := scanStats(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign stats: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) Timeline(ctx context.Context, tenantID uuid.UUID, since time.Time) ([]domain.TimelinePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char((created_at AT TIME ZONE 'UTC')::date, 'YYYY-MM-DD') AS day,
		       COUNT(*) FILTER (WHERE event_type = 'sent'),
		       COUNT(*) FILTER (WHERE event_type = 'opened'),
		       COUNT(*) FILTER (WHERE event_type = 'clicked')
		FROM campaign_events
		WHERE tenant_id = $1 AND created_at >= $2
		  AND event_type IN ('sent', 'opened', 'clicked')
		GROUP BY day
		ORDER BY day ASC
	`, tenantID, since)
	if err != nil {
		return nil, fmt.Errorf("campaign timeline: %w", err)
	}
	defer rows.Close()

	var out []domain.TimelinePoint
	for rows.Next() {
		var p domain.TimelinePoint
		if err := rows.Scan(&p.Date, &p.Sent, &p.Opened, &p.Clicked); err != nil {
			return nil, fmt.Errorf("scan timeline: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *CampaignRepo) RecentEvents(ctx context.Context, tenantID uuid.UUID, campaignID string, limit int) ([]domain.CampaignEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tenant_id, campaign_id, contact_id, event_type, metadata, created_at
		FROM campaign_events
		WHERE tenant_id = $1 AND campaign_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`, tenantID, campaignID, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaign events: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignEvent
	for rows.Next() {
		var (
			e        domain.CampaignEvent
			kind     string
			metadata []byte
		)
		if err := rows.Scan(&e.TenantID, &e.CampaignID, &e.ContactID, &kind, &metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign event: %w", err)
		}
		e.EventType = domain.EventType(kind)
		if e.Metadata, err = jsoncol.DecodeMap("metadata", metadata); err != nil {
			return nil, fmt.Errorf("event %s/%s: %w", e.CampaignID, e.ContactID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

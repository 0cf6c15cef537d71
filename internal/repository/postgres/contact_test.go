package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/service/scoring"
)

var activityCols = []string{
	"id", "tenant_id", "pipeline_stage", "lead_score", "is_hot_lead",
	"source", "email", "phone", "interested_destination", "travel_type",
	"travel_start_date", "travel_end_date", "num_travelers", "budget_min", "budget_max",
	"created_at", "updated_at", "interactions", "last_interaction_at", "completed_tasks",
}

func TestContactRepo_ContactActivity(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewContactRepo(db)

	tenant, contact := uuid.New(), uuid.New()
	created := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.tenant_id = $1 AND c.id = $2")).
		WithArgs(tenant, contact).
		WillReturnRows(sqlmock.NewRows(activityCols).AddRow(
			contact.String(), tenant.String(), "quoted", int64(130), true,
			"referral", "ana@example.com", "", "Azores", "honeymoon",
			start, nil, int64(2), nil, 3500.0,
			created, created, int64(4), last, int64(1),
		))

	got, err := repo.ContactActivity(context.Background(), tenant, contact)
	require.NoError(t, err)

	assert.Equal(t, contact, got.Contact.ID)
	assert.Equal(t, domain.StageQuoted, got.Contact.Stage)
	assert.Equal(t, 100, got.Contact.LeadScore, "score is clamped on read")
	assert.True(t, got.Contact.IsHotLead)
	require.NotNil(t, got.Contact.TravelStartDate)
	assert.Equal(t, start, *got.Contact.TravelStartDate)
	assert.Nil(t, got.Contact.TravelEndDate)
	require.NotNil(t, got.Contact.NumTravelers)
	assert.Equal(t, 2, *got.Contact.NumTravelers)
	assert.Nil(t, got.Contact.BudgetMin)
	require.NotNil(t, got.Contact.BudgetMax)
	assert.Equal(t, 3500.0, *got.Contact.BudgetMax)
	assert.Equal(t, 4, got.InteractionCount)
	assert.Equal(t, 1, got.CompletedTasks)
	require.NotNil(t, got.LastInteractionAt)
	assert.Equal(t, last, *got.LastInteractionAt)
}

func TestContactRepo_ContactActivityNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewContactRepo(db)

	mock.ExpectQuery("FROM contacts c").WillReturnRows(sqlmock.NewRows(activityCols))

	_, err := repo.ContactActivity(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, scoring.ErrNotFound)
}

func TestContactRepo_OpenContactsKeepsUnknownStage(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewContactRepo(db)
	tenant := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`c.pipeline_stage NOT IN ('won', 'lost')`)).
		WithArgs(tenant, 20).
		WillReturnRows(sqlmock.NewRows(activityCols).
			AddRow(uuid.NewString(), tenant.String(), "negotiating", int64(80), false,
				"", "", "", "", "", nil, nil, nil, nil, nil, now, now, int64(0), nil, int64(0)).
			AddRow(uuid.NewString(), tenant.String(), "archived", int64(60), false,
				"", "", "", "", "", nil, nil, nil, nil, nil, now, now, int64(0), nil, int64(0)))

	got, err := repo.OpenContacts(context.Background(), tenant, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.StageNegotiating, got[0].Contact.Stage)
	assert.Equal(t, domain.PipelineStage(0), got[1].Contact.Stage)
}

func TestContactRepo_ConversionStatsColdTenant(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewContactRepo(db)
	tenant := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("AVG(COALESCE(budget_max, budget_min, 0))")).
		WithArgs(tenant, closedStageNames()).
		WillReturnRows(sqlmock.NewRows([]string{"count", "score", "days", "travelers", "budget"}).
			AddRow(int64(0), nil, nil, nil, nil))

	stats, err := repo.ConversionStats(context.Background(), tenant)
	require.NoError(t, err)
	assert.Zero(t, stats.ConvertedCount)
	assert.Nil(t, stats.AvgScore)

	p := scoring.BuildPattern(stats)
	assert.Equal(t, 30.0, p.AvgDaysToClose)
}

func TestContactRepo_ConversionStats(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewContactRepo(db)
	tenant := uuid.New()
	stages := closedStageNames()

	mock.ExpectQuery(regexp.QuoteMeta("AVG(lead_score)::float8")).
		WithArgs(tenant, stages).
		WillReturnRows(sqlmock.NewRows([]string{"count", "score", "days", "travelers", "budget"}).
			AddRow(int64(12), 78.5, 18.25, nil, 4100.0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT AVG(cnt)::float8")).
		WithArgs(tenant, stages).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(9.0))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY source")).
		WithArgs(tenant, stages, scoring.TopListSize).
		WillReturnRows(sqlmock.NewRows([]string{"source"}).AddRow("referral").AddRow("instagram"))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY interested_destination")).
		WithArgs(tenant, stages, scoring.TopListSize).
		WillReturnRows(sqlmock.NewRows([]string{"interested_destination"}).AddRow("Bali"))

	stats, err := repo.ConversionStats(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.ConvertedCount)
	require.NotNil(t, stats.AvgScore)
	assert.Equal(t, 78.5, *stats.AvgScore)
	assert.Nil(t, stats.AvgTravelers)
	require.NotNil(t, stats.AvgInteractions)
	assert.Equal(t, 9.0, *stats.AvgInteractions)
	assert.Equal(t, []string{"referral", "instagram"}, stats.TopSources)
	assert.Equal(t, []string{"Bali"}, stats.TopDestinations)

	p := scoring.BuildPattern(stats)
	assert.Equal(t, 2.0, p.AvgTravelers, "null average keeps the default")
	assert.Equal(t, 18.25, p.AvgDaysToClose)
}

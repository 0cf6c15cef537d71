package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/travel-crm/internal/domain"
	"github.com/ignite/travel-crm/internal/pkg/jsoncol"
	"github.com/ignite/travel-crm/internal/service/abtest"
)

var abTestCols = []string{
	"id", "tenant_id", "name", "variant_a", "variant_b", "winning_criteria", "status",
	"winner", "improvement_percent", "confidence", "created_at", "started_at", "completed_at",
}

func TestABTestRepo_NextID(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('ab_tests_id_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(int64(42)))

	id, err := repo.NextID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestABTestRepo_Insert(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	test := &domain.ABTest{
		ID:              3,
		TenantID:        uuid.New(),
		Name:            "Subject line",
		VariantA:        domain.Variant{TemplateID: "a", CampaignID: "abtest_3_A"},
		VariantB:        domain.Variant{TemplateID: "b", CampaignID: "abtest_3_B"},
		WinningCriteria: domain.CriteriaOpenRate,
		Status:          domain.ABTestDraft,
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO ab_tests").
		WithArgs(int64(3), test.TenantID, "Subject line", sqlmock.AnyArg(), sqlmock.AnyArg(),
			"open_rate", "draft", test.CreatedAt).
		WillReturnResult(sqlmock.NewResult(3, 1))

	require.NoError(t, repo.Insert(context.Background(), test))
}

func TestABTestRepo_Get(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	tenant := uuid.New()
	contact := uuid.New()
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	started := created.Add(time.Hour)

	variantA := []byte(`{"template_id":"a","template_name":"Sunny","subject":"Go south","contact_ids":["` + contact.String() + `"],"campaign_id":"abtest_9_A"}`)
	variantB := []byte(`{"template_id":"b","campaign_id":"abtest_9_B"}`)

	mock.ExpectQuery(regexp.QuoteMeta("FROM ab_tests WHERE tenant_id = $1 AND id = $2")).
		WithArgs(tenant, int64(9)).
		WillReturnRows(sqlmock.NewRows(abTestCols).AddRow(
			int64(9), tenant.String(), "Summer", variantA, variantB, "click_rate", "running",
			"", 0, 0, created, started, nil,
		))

	got, err := repo.Get(context.Background(), tenant, 9)
	require.NoError(t, err)
	assert.Equal(t, domain.ABTestRunning, got.Status)
	assert.Equal(t, domain.CriteriaClickRate, got.WinningCriteria)
	assert.Equal(t, []uuid.UUID{contact}, got.VariantA.ContactIDs)
	assert.Equal(t, "abtest_9_B", got.VariantB.CampaignID)
	require.NotNil(t, got.StartedAt)
	assert.Equal(t, started, *got.StartedAt)
	assert.Nil(t, got.CompletedAt)
}

func TestABTestRepo_GetMalformedVariant(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	tenant := uuid.New()

	mock.ExpectQuery("FROM ab_tests").
		WillReturnRows(sqlmock.NewRows(abTestCols).AddRow(
			int64(9), tenant.String(), "Summer", []byte(`{"template_id":"a","colour":"red"}`), []byte(`{}`),
			"open_rate", "draft", "", 0, 0, time.Now(), nil, nil,
		))

	_, err := repo.Get(context.Background(), tenant, 9)
	assert.ErrorIs(t, err, jsoncol.ErrMalformed)
}

func TestABTestRepo_GetNotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)

	mock.ExpectQuery("FROM ab_tests").WillReturnRows(sqlmock.NewRows(abTestCols))

	_, err := repo.Get(context.Background(), uuid.New(), 1)
	assert.ErrorIs(t, err, abtest.ErrNotFound)
}

func TestABTestRepo_MarkRunning(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	tenant := uuid.New()
	at := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("AND status = 'draft'")).
		WithArgs(tenant, int64(4), at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkRunning(context.Background(), tenant, 4, at))

	mock.ExpectExec(regexp.QuoteMeta("AND status = 'draft'")).
		WithArgs(tenant, int64(4), at).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkRunning(context.Background(), tenant, 4, at), abtest.ErrInvalidTransition)
}

func TestABTestRepo_SaveResult(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	tenant := uuid.New()
	res := domain.ABTestResult{
		TestID:             4,
		Winner:             domain.WinnerB,
		ImprovementPercent: 25,
		Confidence:         80,
		EvaluatedAt:        time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("completed_at = COALESCE(completed_at, $6)")).
		WithArgs(tenant, int64(4), "B", 25, 80, res.EvaluatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SaveResult(context.Background(), tenant, res))

	mock.ExpectExec("UPDATE ab_tests").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SaveResult(context.Background(), tenant, res), abtest.ErrInvalidTransition)
}

func TestABTestRepo_StateUpdatesSurfaceRowsAffectedErrors(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewABTestRepo(db)
	tenant := uuid.New()
	boom := errors.New("rows affected unavailable")

	mock.ExpectExec("UPDATE ab_tests").WillReturnResult(sqlmock.NewErrorResult(boom))
	err := repo.MarkRunning(context.Background(), tenant, 4, time.Now().UTC())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, abtest.ErrInvalidTransition)

	mock.ExpectExec("UPDATE ab_tests").WillReturnResult(sqlmock.NewErrorResult(boom))
	err = repo.SaveResult(context.Background(), tenant, domain.ABTestResult{TestID: 4, Winner: domain.WinnerTie})
	assert.ErrorIs(t, err, boom)
}

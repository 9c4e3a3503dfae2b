package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifecarechoice/leadgate/internal/models"
	"github.com/lifecarechoice/leadgate/internal/repositories"
)

func setupLeadRepo(t *testing.T) (*TestDB, *repositories.LeadRepository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = testDB.Teardown(context.Background())
	})

	return testDB, repositories.NewLeadRepository(testDB.DB)
}

func TestLeadRepository_InsertAndGet(t *testing.T) {
	_, repo := setupLeadRepo(t)
	ctx := context.Background()

	lead := &models.Lead{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Phone:           "555-123-4567",
		ProductInterest: "final-expense",
		Message:         "Please call after 5pm, thanks",
		IPAddress:       "203.0.113.10",
		UTMSource:       "google",
	}

	id, err := repo.Insert(ctx, lead)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "jane@example.com", got.Email)
	assert.Equal(t, "final-expense", got.ProductInterest)
	assert.Equal(t, "Please call after 5pm, thanks", got.Message)
	assert.Equal(t, "google", got.UTMSource)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestLeadRepository_GetByID_NotFound(t *testing.T) {
	_, repo := setupLeadRepo(t)

	_, err := repo.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLeadRepository_ConcurrentInsertsAllSurvive(t *testing.T) {
	_, repo := setupLeadRepo(t)
	ctx := context.Background()

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := repo.Insert(ctx, &models.Lead{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
				Phone:     "555-123-4567",
			})
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, <-done)
	}

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count, "row-level inserts never clobber each other")
}

func TestLeadRepository_QueryFilters(t *testing.T) {
	testDB, repo := setupLeadRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	_, err := SeedLead(ctx, testDB.Pool, "lead-old", "old@example.com", "iul", base.AddDate(0, -2, 0))
	require.NoError(t, err)
	_, err = SeedLead(ctx, testDB.Pool, "lead-recent", "recent@example.com", "final-expense", base)
	require.NoError(t, err)
	_, err = SeedLead(ctx, testDB.Pool, "lead-newest", "recent@example.com", "final-expense", base.AddDate(0, 0, 5))
	require.NoError(t, err)

	t.Run("date range", func(t *testing.T) {
		start := base.AddDate(0, -1, 0)
		leads, err := repo.Query(ctx, models.LeadFilter{StartDate: &start})
		require.NoError(t, err)
		assert.Len(t, leads, 2)
	})

	t.Run("email", func(t *testing.T) {
		leads, err := repo.Query(ctx, models.LeadFilter{Email: "old@example.com"})
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, "lead-old", leads[0].ID)
	})

	t.Run("product interest", func(t *testing.T) {
		leads, err := repo.Query(ctx, models.LeadFilter{ProductInterest: "final-expense"})
		require.NoError(t, err)
		assert.Len(t, leads, 2)
	})

	t.Run("newest first with pagination", func(t *testing.T) {
		leads, err := repo.Query(ctx, models.LeadFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "lead-newest", leads[0].ID)
		assert.Equal(t, "lead-recent", leads[1].ID)

		rest, err := repo.Query(ctx, models.LeadFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.Equal(t, "lead-old", rest[0].ID)
	})
}

func TestLeadRepository_Delete(t *testing.T) {
	testDB, repo := setupLeadRepo(t)
	ctx := context.Background()

	_, err := SeedLead(ctx, testDB.Pool, "lead-1", "jane@example.com", "other", time.Now().UTC())
	require.NoError(t, err)

	deleted, err := repo.DeleteByID(ctx, "lead-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByID(ctx, "lead-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = repo.GetByID(ctx, "lead-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// Package tests contains test cases for models and repository packages to avoid circular imports
package tests

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kbtwatch/tracker/models"
	"github.com/kbtwatch/tracker/repository"
	testingutil "github.com/kbtwatch/tracker/testing"
	"github.com/kbtwatch/tracker/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDB provisions a fresh test database or skips when Postgres is not reachable
func setupDB(t *testing.T) *testingutil.TestDB {
	t.Helper()
	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available for integration tests: %v", err)
	}
	t.Cleanup(func() {
		_ = testDB.TeardownTestDB()
	})
	return testDB
}

func TestResultRepository(t *testing.T) {
	testDB := setupDB(t)
	repo := repository.NewResultRepository(testDB.DB)
	fixtures := testingutil.NewTestFixtures(testDB)
	ctx := testingutil.CreateTestContext()

	t.Run("Save", func(t *testing.T) {
		result, err := fixtures.CreateTestResult()
		require.NoError(t, err)
		assert.NotZero(t, result.ID)
	})

	t.Run("SaveDuplicatePeriod", func(t *testing.T) {
		original, err := fixtures.CreateTestResultWithPeriod("20240101001")
		require.NoError(t, err)

		dup := &models.Result{
			Period:    original.Period,
			Number:    "7",
			Color:     "green",
			CreatedAt: utils.UTCNow(),
		}
		err = repo.Save(ctx, dup)
		require.Error(t, err)
		assert.True(t, repository.IsDuplicateResult(err))

		// The original row is untouched
		count, err := repo.Count(ctx, models.ResultFilter{Period: utils.ToPtr(original.Period)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("ExistsByPeriod", func(t *testing.T) {
		result, err := fixtures.CreateTestResult()
		require.NoError(t, err)

		exists, err := repo.ExistsByPeriod(ctx, result.Period)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByPeriod(ctx, "does-not-exist")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("LatestOrdering", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		periods := []string{"20240201003", "20240201001", "20240201002"}
		for _, p := range periods {
			_, err := fixtures.CreateTestResultWithPeriod(p)
			require.NoError(t, err)
		}

		rows, err := repo.Latest(ctx, 10)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "20240201003", rows[0].Period)
		assert.Equal(t, "20240201002", rows[1].Period)
		assert.Equal(t, "20240201001", rows[2].Period)
	})

	t.Run("LatestLimit", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		for i := 0; i < 5; i++ {
			_, err := fixtures.CreateTestResultWithPeriod(fmt.Sprintf("2024030100%d", i))
			require.NoError(t, err)
		}

		rows, err := repo.Latest(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, "20240301004", rows[0].Period)
	})

	t.Run("SaveBatchSkipsConflicts", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateTestResultWithPeriod("20240401001")
		require.NoError(t, err)

		batch := []*models.Result{
			{Period: "20240401001", Number: "1", Color: "red", CreatedAt: utils.UTCNow()},
			{Period: "20240401002", Number: "2", Color: "green", CreatedAt: utils.UTCNow()},
			{Period: "20240401003", Number: "3", Color: "violet", CreatedAt: utils.UTCNow()},
		}
		stored, err := repo.SaveBatch(ctx, batch)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored)

		count, err := repo.Count(ctx, models.ResultFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("SaveBatchEmpty", func(t *testing.T) {
		stored, err := repo.SaveBatch(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, stored)
	})

	t.Run("SaveWithinTransaction", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		// A failing step rolls back every write of the transaction
		err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
			if err := repo.Save(txCtx, &models.Result{Period: "20240601001", Number: "1", Color: "red", CreatedAt: utils.UTCNow()}); err != nil {
				return err
			}
			return errors.New("step failed")
		})
		require.Error(t, err)

		count, err := repo.Count(ctx, models.ResultFilter{})
		require.NoError(t, err)
		assert.Zero(t, count)

		// A clean run commits
		err = repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
			return repo.Save(txCtx, &models.Result{Period: "20240601002", Number: "2", Color: "green", CreatedAt: utils.UTCNow()})
		})
		require.NoError(t, err)

		exists, err := repo.ExistsByPeriod(ctx, "20240601002")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("ByFilterColor", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		batch := []*models.Result{
			{Period: "20240501001", Number: "1", Color: "red", CreatedAt: utils.UTCNow()},
			{Period: "20240501002", Number: "2", Color: "green", CreatedAt: utils.UTCNow()},
		}
		_, err := repo.SaveBatch(ctx, batch)
		require.NoError(t, err)

		rows, err := repo.ByFilter(ctx, models.ResultFilter{Color: utils.ToPtr("red")}, "", 0, 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "20240501001", rows[0].Period)
	})
}

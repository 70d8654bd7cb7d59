package businessflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/kbtwatch/tracker/config"
	"github.com/kbtwatch/tracker/models"
	"github.com/kbtwatch/tracker/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seedRepo(t *testing.T, repo *fakeResultRepo, periods ...string) {
	t.Helper()
	for _, p := range periods {
		require.NoError(t, repo.Save(context.Background(), &models.Result{
			Period:    p,
			Number:    "5",
			Color:     "red",
			CreatedAt: utils.UTCNow(),
		}))
	}
}

func TestLatestResults(t *testing.T) {
	repo := newFakeResultRepo()
	seedRepo(t, repo, "20240101001", "20240101003", "20240101002")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	res, err := flow.LatestResults(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "20240101003", res.Results[0].Period)
	assert.Equal(t, "20240101002", res.Results[1].Period)
	assert.NotEmpty(t, res.LastUpdated)
}

func TestLatestResultsDefaultLimit(t *testing.T) {
	repo := newFakeResultRepo()
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	res, err := flow.LatestResults(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.NotNil(t, res.Results, "empty store must encode as [] not null")
}

func TestLatestResultsLimitTooLarge(t *testing.T) {
	repo := newFakeResultRepo()
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	_, err := flow.LatestResults(context.Background(), utils.MaxLatestLimit+1)
	require.Error(t, err)
	assert.True(t, IsInvalidLimit(err))
}

func TestLatestResultsStoreFailure(t *testing.T) {
	repo := newFakeResultRepo()
	repo.failAll = errors.New("connection refused")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	_, err := flow.LatestResults(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

func TestResultsPage(t *testing.T) {
	repo := newFakeResultRepo()
	seedRepo(t, repo, "20240101001", "20240101002")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	page := flow.ResultsPage(context.Background())
	require.NotNil(t, page)
	assert.Empty(t, page.Error)
	assert.Len(t, page.Results, 2)
	assert.NotEmpty(t, page.LastUpdated)
}

func TestResultsPageDegradesOnStoreFailure(t *testing.T) {
	repo := newFakeResultRepo()
	repo.failAll = errors.New("connection refused")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	page := flow.ResultsPage(context.Background())
	require.NotNil(t, page)
	assert.NotEmpty(t, page.Error)
	assert.Empty(t, page.Results)
	assert.NotEmpty(t, page.LastUpdated, "timestamp renders even when the store is down")
}

func TestExportResultsExcel(t *testing.T) {
	repo := newFakeResultRepo()
	seedRepo(t, repo, "20240101002", "20240101001")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	filename, content, err := flow.ExportResultsExcel(context.Background())
	require.NoError(t, err)
	assert.Contains(t, filename, "results_")
	assert.Contains(t, filename, ".xlsx")
	require.NotEmpty(t, content)

	xl, err := excelize.OpenReader(bytes.NewReader(content))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(xl.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"period", "number", "color", "created_at"}, rows[0])
	assert.Equal(t, "20240101002", rows[1][0])
	assert.Equal(t, "20240101001", rows[2][0])
}

func TestExportResultsExcelStoreFailure(t *testing.T) {
	repo := newFakeResultRepo()
	repo.failAll = errors.New("connection refused")
	flow := NewResultsFlow(repo, nil, config.CacheConfig{})

	_, _, err := flow.ExportResultsExcel(context.Background())
	require.Error(t, err)
	assert.True(t, IsStoreUnavailable(err))
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/kbtwatch/tracker/app/dto"
	businessflow "github.com/kbtwatch/tracker/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResultsFlow struct {
	latest     *dto.LatestResultsResponse
	latestErr  error
	page       *dto.ResultsPageData
	exportErr  error
	limitsSeen []int
}

func (f *fakeResultsFlow) LatestResults(ctx context.Context, limit int) (*dto.LatestResultsResponse, error) {
	f.limitsSeen = append(f.limitsSeen, limit)
	return f.latest, f.latestErr
}

func (f *fakeResultsFlow) ResultsPage(ctx context.Context) *dto.ResultsPageData {
	return f.page
}

func (f *fakeResultsFlow) ExportResultsExcel(ctx context.Context) (string, []byte, error) {
	if f.exportErr != nil {
		return "", nil, f.exportErr
	}
	return "results_test.xlsx", []byte("workbook"), nil
}

func newTestApp(flow businessflow.ResultsFlow) *fiber.App {
	h := NewResultsHandler(flow)
	app := fiber.New()
	app.Get("/", h.Index)
	app.Get("/api/v1/results", h.ListResults)
	app.Get("/api/v1/results/export", h.ExportResults)
	return app
}

func TestIndexRendersResults(t *testing.T) {
	flow := &fakeResultsFlow{page: &dto.ResultsPageData{
		Results: []dto.ResultDTO{
			{Period: "20240101001", Number: "5", Color: "red"},
		},
		LastUpdated: "2024-01-01 12:00:00 IST",
	}}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "20240101001")
	assert.Contains(t, string(body), "2024-01-01 12:00:00 IST")
	assert.NotContains(t, string(body), "class=\"error\"")
}

func TestIndexRendersErrorBanner(t *testing.T) {
	flow := &fakeResultsFlow{page: &dto.ResultsPageData{
		Results:     []dto.ResultDTO{},
		LastUpdated: "2024-01-01 12:00:00 IST",
		Error:       "Could not query results from the database",
	}}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode, "page renders even when the store is down")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Could not query results")
	assert.Contains(t, string(body), "No results stored yet")
}

func TestListResultsDefaultLimit(t *testing.T) {
	flow := &fakeResultsFlow{latest: &dto.LatestResultsResponse{
		Results:     []dto.ResultDTO{{Period: "20240101001", Number: "5", Color: "red"}},
		Count:       1,
		LastUpdated: "2024-01-01 12:00:00 IST",
	}}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, flow.limitsSeen, 1)
	assert.Equal(t, 100, flow.limitsSeen[0])

	var payload dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.True(t, payload.Success)
}

func TestListResultsExplicitLimit(t *testing.T) {
	flow := &fakeResultsFlow{latest: &dto.LatestResultsResponse{Results: []dto.ResultDTO{}}}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results?limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Len(t, flow.limitsSeen, 1)
	assert.Equal(t, 5, flow.limitsSeen[0])
}

func TestListResultsInvalidLimit(t *testing.T) {
	flow := &fakeResultsFlow{}
	app := newTestApp(flow)

	for _, limit := range []string{"-1", "101"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results?limit="+limit, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
	assert.Empty(t, flow.limitsSeen, "invalid limits never reach the flow")
}

func TestListResultsStoreUnavailable(t *testing.T) {
	flow := &fakeResultsFlow{
		latestErr: businessflow.NewBusinessError("STORE_QUERY_FAILED", "store down", businessflow.ErrStoreUnavailable),
	}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	var payload struct {
		Success bool            `json:"success"`
		Error   dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.False(t, payload.Success)
	assert.Equal(t, "STORE_UNAVAILABLE", payload.Error.Code)
}

func TestExportResults(t *testing.T) {
	flow := &fakeResultsFlow{}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results/export", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "results_test.xlsx")
}

func TestExportResultsStoreUnavailable(t *testing.T) {
	flow := &fakeResultsFlow{
		exportErr: businessflow.NewBusinessError("STORE_QUERY_FAILED", "store down", businessflow.ErrStoreUnavailable),
	}
	app := newTestApp(flow)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/results/export", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kbtwatch/tracker/app/dto"
	"github.com/kbtwatch/tracker/config"
	"github.com/kbtwatch/tracker/repository"
	"github.com/kbtwatch/tracker/utils"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

const latestResultsCacheKey = "latest_results"

// ResultsFlow serves the read side: the JSON listing, the HTML page data,
// and the spreadsheet export. It only ever reads the store.
type ResultsFlow interface {
	LatestResults(ctx context.Context, limit int) (*dto.LatestResultsResponse, error)
	ResultsPage(ctx context.Context) *dto.ResultsPageData
	ExportResultsExcel(ctx context.Context) (string, []byte, error)
}

// ResultsFlowImpl implements ResultsFlow with an optional Redis read-through
// cache in front of the store
type ResultsFlowImpl struct {
	resultRepo  repository.ResultRepository
	rc          *redis.Client
	cacheConfig config.CacheConfig
}

func NewResultsFlow(resultRepo repository.ResultRepository, rc *redis.Client, cacheConfig config.CacheConfig) ResultsFlow {
	return &ResultsFlowImpl{
		resultRepo:  resultRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
	}
}

// LatestResults returns up to limit results ordered by period descending.
// Payloads are cached briefly in Redis when a client is configured; the short
// TTL keeps new cycles visible without invalidation.
func (f *ResultsFlowImpl) LatestResults(ctx context.Context, limit int) (*dto.LatestResultsResponse, error) {
	if limit <= 0 {
		limit = utils.DefaultLatestLimit
	}
	if limit > utils.MaxLatestLimit {
		return nil, NewBusinessError("VALIDATION_ERROR", "limit out of range", ErrInvalidLimit)
	}

	cacheKey := redisKey(f.cacheConfig, fmt.Sprintf("%s:%d", latestResultsCacheKey, limit))
	if f.cacheEnabled() {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.LatestResultsResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	rows, err := f.resultRepo.Latest(ctx, limit)
	if err != nil {
		return nil, NewBusinessError("STORE_QUERY_FAILED", "failed to query latest results", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	out := &dto.LatestResultsResponse{
		Results:     ToResultDTOs(rows),
		Count:       len(rows),
		LastUpdated: utils.DisplayNow().Format(utils.DisplayTimeFormat),
	}

	if f.cacheEnabled() {
		if bs, err := json.Marshal(out); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, f.cacheTTL()).Err()
		}
	}

	return out, nil
}

// ResultsPage builds the data for the HTML page. It never fails: when the
// store cannot be queried the page gets an empty list plus a visible error
// string, and the last-updated stamp is computed regardless.
func (f *ResultsFlowImpl) ResultsPage(ctx context.Context) *dto.ResultsPageData {
	page := &dto.ResultsPageData{
		Results:     []dto.ResultDTO{},
		LastUpdated: utils.DisplayNow().Format(utils.DisplayTimeFormat),
	}

	rows, err := f.resultRepo.Latest(ctx, utils.DefaultLatestLimit)
	if err != nil {
		page.Error = fmt.Sprintf("Could not query results from the database: %v", err)
		return page
	}

	page.Results = ToResultDTOs(rows)
	return page
}

// ExportResultsExcel writes the latest results into a single-sheet workbook
func (f *ResultsFlowImpl) ExportResultsExcel(ctx context.Context) (string, []byte, error) {
	rows, err := f.resultRepo.Latest(ctx, utils.DefaultLatestLimit)
	if err != nil {
		return "", nil, NewBusinessError("STORE_QUERY_FAILED", "failed to query results for export", fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	header := []string{"period", "number", "color", "created_at"}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, r := range rows {
		record := []string{
			r.Period,
			r.Number,
			r.Color,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "failed to write Excel file", err)
	}

	filename := fmt.Sprintf("results_%s.xlsx", utils.UTCNowFormat("20060102_150405"))
	return filename, buf.Bytes(), nil
}

func (f *ResultsFlowImpl) cacheEnabled() bool {
	return f.rc != nil && f.cacheConfig.Enabled
}

func (f *ResultsFlowImpl) cacheTTL() time.Duration {
	if f.cacheConfig.DefaultTTL > 0 {
		return f.cacheConfig.DefaultTTL
	}
	return 5 * time.Second
}

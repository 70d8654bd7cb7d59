package businessflow

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbtwatch/tracker/app/services"
	"github.com/kbtwatch/tracker/models"
	"github.com/kbtwatch/tracker/repository"
	"github.com/kbtwatch/tracker/utils"
)

// CycleReport summarizes one completed fetch-dedup-store pass
type CycleReport struct {
	CycleID    string
	Candidates int
	Staged     int
	Stored     int64
}

// IngestionFlow runs one fetch-dedup-store cycle. Errors it returns are
// classified (network, parse, store) and already contained to the cycle:
// the caller logs them and waits for the next tick.
type IngestionFlow interface {
	RunCycle(ctx context.Context) (*CycleReport, error)
}

// IngestionFlowImpl implements IngestionFlow over the upstream fetcher and
// the result store
type IngestionFlowImpl struct {
	resultRepo repository.ResultRepository
	fetcher    services.ResultsFetcher
}

func NewIngestionFlow(resultRepo repository.ResultRepository, fetcher services.ResultsFetcher) IngestionFlow {
	return &IngestionFlowImpl{
		resultRepo: resultRepo,
		fetcher:    fetcher,
	}
}

// RunCycle executes one ingestion pass:
//
//  1. fetch the candidate batch from the upstream API
//  2. skip candidates whose period is already stored (or repeated in batch)
//  3. commit the remaining rows as a single transaction
//
// The exists-then-insert check is a fast path, not the correctness
// mechanism: cycles may overlap, and the unique index on period is the
// backstop. A row that loses that race is skipped inside the batch commit
// without aborting its siblings.
func (f *IngestionFlowImpl) RunCycle(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{CycleID: uuid.New().String()}

	candidates, err := f.fetcher.FetchLatest(ctx)
	if err != nil {
		return report, err
	}
	report.Candidates = len(candidates)

	staged := make([]*models.Result, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c.Period == "" || seen[c.Period] {
			continue
		}
		seen[c.Period] = true

		exists, err := f.resultRepo.ExistsByPeriod(ctx, c.Period)
		if err != nil {
			return report, NewBusinessError("STORE_CHECK_FAILED", "failed to check existing period", err)
		}
		if exists {
			continue
		}

		staged = append(staged, &models.Result{
			Period:    c.Period,
			Number:    c.Number,
			Color:     c.Color,
			CreatedAt: utils.UTCNow(),
		})
	}
	report.Staged = len(staged)

	if len(staged) == 0 {
		return report, nil
	}

	stored, err := f.resultRepo.SaveBatch(ctx, staged)
	if err != nil {
		return report, NewBusinessError("STORE_COMMIT_FAILED", "failed to commit result batch", err)
	}
	report.Stored = stored

	return report, nil
}

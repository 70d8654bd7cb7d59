package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbtwatch/tracker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResultRepositoryImpl implements ResultRepository
type ResultRepositoryImpl struct {
	*BaseRepository[models.Result, models.ResultFilter]
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &ResultRepositoryImpl{BaseRepository: NewBaseRepository[models.Result, models.ResultFilter](db)}
}

// Save inserts one result. A lost uniqueness race on period is reported as
// ErrDuplicateResult so callers can treat it as "already stored" instead of
// a generic database failure. Requires TranslateError on the gorm config.
func (r *ResultRepositoryImpl) Save(ctx context.Context, result *models.Result) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Create(result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: period=%s", ErrDuplicateResult, result.Period)
			return err
		}
		err = fmt.Errorf("failed to save result: %w", err)
		return err
	}

	return nil
}

// SaveBatch inserts the staged results as one unit of work. Rows that lost
// the uniqueness race to a concurrent cycle are skipped at the database level
// (ON CONFLICT DO NOTHING) so a race never aborts the rest of the batch.
// Returns the number of rows actually inserted.
func (r *ResultRepositoryImpl) SaveBatch(ctx context.Context, results []*models.Result) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "period"}},
		DoNothing: true,
	}).CreateInBatches(results, 100)
	if res.Error != nil {
		err = fmt.Errorf("failed to save result batch: %w", res.Error)
		return 0, err
	}

	return res.RowsAffected, nil
}

func (r *ResultRepositoryImpl) ExistsByPeriod(ctx context.Context, period string) (bool, error) {
	return r.Exists(ctx, models.ResultFilter{Period: &period})
}

func (r *ResultRepositoryImpl) Latest(ctx context.Context, n int) ([]*models.Result, error) {
	return r.ByFilter(ctx, models.ResultFilter{}, "period DESC", n, 0)
}

func (r *ResultRepositoryImpl) applyFilter(db *gorm.DB, f models.ResultFilter) *gorm.DB {
	if f.ID != nil {
		db = db.Where("id = ?", *f.ID)
	}
	if f.Period != nil {
		db = db.Where("period = ?", *f.Period)
	}
	if f.Color != nil {
		db = db.Where("color = ?", *f.Color)
	}
	if f.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *f.CreatedAfter)
	}
	if f.CreatedBefore != nil {
		db = db.Where("created_at < ?", *f.CreatedBefore)
	}
	return db
}

func (r *ResultRepositoryImpl) ByFilter(ctx context.Context, filter models.ResultFilter, orderBy string, limit, offset int) ([]*models.Result, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Result{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Result
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ResultRepositoryImpl) Count(ctx context.Context, filter models.ResultFilter) (int64, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Result{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ResultRepositoryImpl) Exists(ctx context.Context, filter models.ResultFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"

	"github.com/kbtwatch/tracker/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

// ErrDuplicateResult reports a write that lost the uniqueness race on period.
// Callers treat it the same as "already stored".
var ErrDuplicateResult = errors.New("result with this period already stored")

func IsDuplicateResult(err error) bool {
	return errors.Is(err, ErrDuplicateResult)
}

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ResultRepository defines operations for stored draw results
type ResultRepository interface {
	Repository[models.Result, models.ResultFilter]
	ExistsByPeriod(ctx context.Context, period string) (bool, error)
	// SaveBatch stores the given results in one transaction. Rows whose
	// period already exists are skipped; the returned count covers only the
	// rows actually inserted.
	SaveBatch(ctx context.Context, results []*models.Result) (int64, error)
	// Latest returns up to n results ordered by period descending.
	Latest(ctx context.Context, n int) ([]*models.Result, error)
}

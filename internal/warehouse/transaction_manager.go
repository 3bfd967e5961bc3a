package warehouse

import (
	"context"

	"promptquest/internal/domain"
)

// bestEffortTransactionManager is the warehouse pairing for
// domain.TransactionManager. BigQuery has no transactions: fn runs as-is
// and each row write it performed stays committed even when fn fails.
type bestEffortTransactionManager struct{}

// NewBestEffortTransactionManager returns the pass-through transaction
// manager used with the warehouse store.
func NewBestEffortTransactionManager() domain.TransactionManager {
	return bestEffortTransactionManager{}
}

func (bestEffortTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

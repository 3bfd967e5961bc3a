package domain

import "context"

// Distinct fields accepted by QuestionRepository.DistinctValues.
const (
	FieldSkill  = "skill"
	FieldArea   = "area"
	FieldDegree = "degree"
)

// QuestionRepository is the storage abstraction over the question bank.
// Two implementations exist: a transactional embedded SQLite store
// (internal/repository) and an append-oriented BigQuery store
// (internal/warehouse). Exactly one is selected at startup; callers never
// branch on which one is present.
//
// The warehouse implementation is eventually consistent: a CountAll or
// FindRandom issued immediately after a Save batch may not observe the
// just-written rows. Callers must not assume read-after-write.
type QuestionRepository interface {
	// Save persists the question, assigning an id when absent, and
	// returns the effective id.
	Save(ctx context.Context, q *Question) (int64, error)
	// FindAll returns a snapshot of every question. Ordering is only
	// guaranteed to be stable per backend, not across backends.
	FindAll(ctx context.Context) ([]*Question, error)
	// FindByID returns the question with the given id, or (nil, nil)
	// when no such question exists.
	FindByID(ctx context.Context, id int64) (*Question, error)
	// FindRandom returns up to limit random questions satisfying every
	// filter predicate, without duplicates within one call. An empty
	// result is not an error.
	FindRandom(ctx context.Context, limit int, filters SampleFilters) ([]*Question, error)
	// DeleteAll removes every question. Idempotent.
	DeleteAll(ctx context.Context) error
	CountAll(ctx context.Context) (int64, error)
	// DistinctValues returns the sorted distinct non-empty values of one
	// of FieldSkill, FieldArea, FieldDegree.
	DistinctValues(ctx context.Context, field string) ([]string, error)
	// DifficultyDistribution returns the question count per difficulty
	// level actually present in the store.
	DifficultyDistribution(ctx context.Context) (map[int]int64, error)
}

// TransactionManager runs a function within a storage transaction where the
// backend supports one. The relational store commits or rolls back the
// whole function; the warehouse store has no transactions and runs the
// function as-is, leaving each row write best-effort.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

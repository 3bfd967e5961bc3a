package warehouse

import (
	"context"
	"testing"
	"time"

	"promptquest/internal/domain"

	"cloud.google.com/go/bigquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowRoundTrip(t *testing.T) {
	q := domain.NewQuestion(
		"What is a dataset?",
		"A table container", "A VM", "A bucket", "A queue",
		"A",
		"Datasets group tables.",
		1,
		"Cloud", "BigQuery", domain.DegreeJunior,
	)
	q.ID = 11

	row := toRow(q)
	assert.Equal(t, int64(11), row.ID)
	assert.Equal(t, "What is a dataset?", row.Question)
	assert.True(t, row.Explanation.Valid)

	back := row.toDomain()
	assert.Equal(t, q, back)
}

func TestRowNullExplanation(t *testing.T) {
	q := domain.NewQuestion("Q", "a", "b", "c", "d", "B", "", 2, "Cloud", "BigQuery", domain.DegreeMid)

	row := toRow(q)
	assert.False(t, row.Explanation.Valid, "blank explanation is stored as NULL")
	assert.Equal(t, "", row.toDomain().Explanation)
}

func TestBuildRandomQuery(t *testing.T) {
	sql, params := buildRandomQuery("`p.d.questions`", 5, domain.SampleFilters{
		Skill:      "Go",
		Difficulty: 3,
	})

	assert.Equal(t,
		"SELECT * FROM `p.d.questions` WHERE 1=1 AND LOWER(skill) = LOWER(@skill) AND difficulty = @difficulty ORDER BY RAND() LIMIT @limit",
		sql)
	require.Len(t, params, 3)
	assert.Equal(t, bigquery.QueryParameter{Name: "skill", Value: "Go"}, params[0])
	assert.Equal(t, bigquery.QueryParameter{Name: "difficulty", Value: int64(3)}, params[1])
	assert.Equal(t, bigquery.QueryParameter{Name: "limit", Value: int64(5)}, params[2])
}

func TestBuildRandomQueryNoFilters(t *testing.T) {
	sql, params := buildRandomQuery("`p.d.questions`", 10, domain.SampleFilters{})

	assert.Equal(t, "SELECT * FROM `p.d.questions` WHERE 1=1 ORDER BY RAND() LIMIT @limit", sql)
	require.Len(t, params, 1)
	assert.Equal(t, "limit", params[0].Name)
}

func TestSurrogateIDIsNumericAndBounded(t *testing.T) {
	id := surrogateID(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	assert.Greater(t, id, int64(0))
	assert.Less(t, id, int64(1_000_000_000), "surrogate stays inside the derived id space")
}

func TestDistinctColumnWhitelist(t *testing.T) {
	for _, field := range []string{domain.FieldSkill, domain.FieldArea, domain.FieldDegree} {
		column, err := distinctColumn(field)
		assert.NoError(t, err)
		assert.NotEmpty(t, column)
	}

	_, err := distinctColumn("explanation")
	assert.Error(t, err)
}

func TestBestEffortTransactionManagerPassesThrough(t *testing.T) {
	txm := NewBestEffortTransactionManager()

	calls := 0
	err := txm.WithTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)

	err = txm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError, "errors propagate unchanged, nothing is rolled back")
}

package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"promptquest/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func questionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "question", "option_a", "option_b", "option_c", "option_d",
		"correct_answer", "explanation", "difficulty", "area", "skill", "degree",
	})
}

func sampleQuestion() *domain.Question {
	return domain.NewQuestion(
		"What is a goroutine?",
		"A lightweight thread", "A syscall", "A file handle", "A mutex",
		"A",
		"Goroutines are scheduled by the Go runtime.",
		3,
		"Concurrency", "Go", domain.DegreeMid,
	)
}

func TestSaveAssignsID(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	q := sampleQuestion()
	mock.ExpectExec(`INSERT INTO questions \(question,`).
		WithArgs(
			q.Text, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
			q.CorrectAnswer, sqlmock.AnyArg(), q.Difficulty, q.Area, q.Skill, q.Degree,
		).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := adapter.Save(context.Background(), q)

	assert.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(7), q.ID, "effective id is written back to the entity")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveKeepsExistingID(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	q := sampleQuestion()
	q.ID = 42
	mock.ExpectExec(`INSERT INTO questions \(id,`).
		WillReturnResult(sqlmock.NewResult(42, 1))

	id, err := adapter.Save(context.Background(), q)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveNil(t *testing.T) {
	db, _ := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	_, err := adapter.Save(context.Background(), nil)
	assert.Error(t, err)
}

func TestFindByID(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	rows := questionRows().AddRow(
		3, "What is a goroutine?", "A lightweight thread", "A syscall", "A file handle", "A mutex",
		"A", "Goroutines are scheduled by the Go runtime.", 3, "Concurrency", "Go", "mid",
	)
	mock.ExpectQuery(`SELECT .+ FROM questions WHERE id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	q, err := adapter.FindByID(context.Background(), 3)

	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, int64(3), q.ID)
	assert.Equal(t, "A", q.CorrectAnswer)
	assert.Equal(t, "A lightweight thread", q.OptionA)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDMiss(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM questions WHERE id = \?`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	q, err := adapter.FindByID(context.Background(), 999)

	assert.NoError(t, err, "a miss is not an error")
	assert.Nil(t, q)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNullExplanation(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	rows := questionRows().AddRow(
		5, "Pick one", "a", "b", "c", "d", "B", nil, 1, "General", "Trivia", "junior",
	)
	mock.ExpectQuery(`SELECT .+ FROM questions WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(rows)

	q, err := adapter.FindByID(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "", q.Explanation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRandomWithFilters(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	rows := questionRows().AddRow(
		1, "Q1", "a", "b", "c", "d", "C", "because", 2, "Databases", "SQL", "junior",
	)
	query := `SELECT .+ FROM questions WHERE LOWER\(skill\) = LOWER\(\?\) AND difficulty = \? ORDER BY RANDOM\(\) LIMIT \?`
	mock.ExpectQuery(query).
		WithArgs("SQL", 2, 5).
		WillReturnRows(rows)

	result, err := adapter.FindRandom(context.Background(), 5, domain.SampleFilters{Skill: "SQL", Difficulty: 2})

	assert.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, "SQL", result[0].Skill)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRandomNoFilters(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT .+ FROM questions ORDER BY RANDOM\(\) LIMIT \?`).
		WithArgs(10).
		WillReturnRows(questionRows())

	result, err := adapter.FindRandom(context.Background(), 10, domain.SampleFilters{})

	assert.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindRandomNonPositiveLimit(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	// No query must be issued at all.
	result, err := adapter.FindRandom(context.Background(), 0, domain.SampleFilters{})

	assert.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAllIdempotent(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	mock.ExpectExec(`DELETE FROM questions`).WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(`DELETE FROM questions`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, adapter.DeleteAll(context.Background()))
	assert.NoError(t, adapter.DeleteAll(context.Background()), "deleting an empty store succeeds")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountAll(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM questions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(17))

	count, err := adapter.CountAll(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, int64(17), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctValues(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	query := regexp.QuoteMeta(`SELECT DISTINCT skill FROM questions WHERE skill IS NOT NULL AND skill != '' ORDER BY skill`)
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows([]string{"skill"}).AddRow("Go").AddRow("SQL"))

	values, err := adapter.DistinctValues(context.Background(), domain.FieldSkill)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctValuesRejectsUnknownField(t *testing.T) {
	db, _ := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	_, err := adapter.DistinctValues(context.Background(), "correct_answer")
	assert.Error(t, err)
}

func TestDifficultyDistribution(t *testing.T) {
	db, mock := setupTestDB(t)
	adapter := NewQuestionDatabaseAdapter(db)

	rows := sqlmock.NewRows([]string{"difficulty", "count"}).
		AddRow(1, 4).
		AddRow(3, 9)
	mock.ExpectQuery(`SELECT difficulty, COUNT\(\*\) AS count FROM questions GROUP BY difficulty`).
		WillReturnRows(rows)

	distribution, err := adapter.DifficultyDistribution(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 4, 3: 9}, distribution)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildFilterClauseOrder(t *testing.T) {
	where, args := buildFilterClause(domain.SampleFilters{
		Skill:      "Go",
		Area:       "Concurrency",
		Degree:     "senior",
		Difficulty: 4,
	})

	assert.Equal(t,
		" WHERE LOWER(skill) = LOWER(?) AND LOWER(area) = LOWER(?) AND difficulty = ? AND LOWER(degree) = LOWER(?)",
		where)
	assert.Equal(t, []interface{}{"Go", "Concurrency", 4, "senior"}, args)
}

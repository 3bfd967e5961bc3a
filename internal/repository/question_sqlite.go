package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"promptquest/internal/domain"
	"promptquest/internal/repository/models"
	"promptquest/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `id, question, option_a, option_b, option_c, option_d,
	correct_answer, explanation, difficulty, area, skill, degree`

// QuestionDatabaseAdapter implements domain.QuestionRepository over the
// embedded SQLite store using sqlx. Writes participate in the transaction
// carried by the context, if any.
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// Save implements domain.QuestionRepository. The engine assigns the id via
// auto-increment unless the question already carries one.
func (a *QuestionDatabaseAdapter) Save(ctx context.Context, q *domain.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("cannot save nil question")
	}
	model := toModelQuestion(q)
	exec := GetExecutor(ctx, a.db)

	if model.ID != 0 {
		query := `INSERT INTO questions (` + questionColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := exec.ExecContext(ctx, query,
			model.ID, model.Question, model.OptionA, model.OptionB, model.OptionC, model.OptionD,
			model.CorrectAnswer, model.Explanation, model.Difficulty, model.Area, model.Skill, model.Degree,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save question: %w", err)
		}
		return model.ID, nil
	}

	query := `INSERT INTO questions (question, option_a, option_b, option_c, option_d,
		correct_answer, explanation, difficulty, area, skill, degree)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := exec.ExecContext(ctx, query,
		model.Question, model.OptionA, model.OptionB, model.OptionC, model.OptionD,
		model.CorrectAnswer, model.Explanation, model.Difficulty, model.Area, model.Skill, model.Degree,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted question id: %w", err)
	}
	q.ID = id
	return id, nil
}

// FindAll implements domain.QuestionRepository. Rows come back in insertion
// order.
func (a *QuestionDatabaseAdapter) FindAll(ctx context.Context) ([]*domain.Question, error) {
	var rows []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions`
	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query questions: %w", err)
	}
	return toDomainQuestions(rows), nil
}

// FindByID implements domain.QuestionRepository. A miss returns (nil, nil).
func (a *QuestionDatabaseAdapter) FindByID(ctx context.Context, id int64) (*domain.Question, error) {
	var row models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`
	err := a.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by id %d: %w", id, err)
	}
	return toDomainQuestion(&row), nil
}

// FindRandom implements domain.QuestionRepository.
func (a *QuestionDatabaseAdapter) FindRandom(ctx context.Context, limit int, filters domain.SampleFilters) ([]*domain.Question, error) {
	if limit <= 0 {
		return []*domain.Question{}, nil
	}

	where, args := buildFilterClause(filters)
	query := `SELECT ` + questionColumns + ` FROM questions` + where + ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, limit)

	var rows []models.Question
	if err := a.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query random questions: %w", err)
	}
	return toDomainQuestions(rows), nil
}

// DeleteAll implements domain.QuestionRepository. Deleting an empty table
// succeeds.
func (a *QuestionDatabaseAdapter) DeleteAll(ctx context.Context) error {
	exec := GetExecutor(ctx, a.db)
	if _, err := exec.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("failed to delete questions: %w", err)
	}
	return nil
}

// CountAll implements domain.QuestionRepository.
func (a *QuestionDatabaseAdapter) CountAll(ctx context.Context) (int64, error) {
	var count int64
	if err := a.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM questions`); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// DistinctValues implements domain.QuestionRepository. The field is mapped
// through a whitelist; unknown fields are rejected.
func (a *QuestionDatabaseAdapter) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, err := distinctColumn(field)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT DISTINCT %s FROM questions WHERE %s IS NOT NULL AND %s != '' ORDER BY %s`,
		column, column, column, column)
	values := []string{}
	if err := a.db.SelectContext(ctx, &values, query); err != nil {
		return nil, fmt.Errorf("failed to query distinct %s values: %w", field, err)
	}
	return values, nil
}

// DifficultyDistribution implements domain.QuestionRepository.
func (a *QuestionDatabaseAdapter) DifficultyDistribution(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		Difficulty int   `db:"difficulty"`
		Count      int64 `db:"count"`
	}
	query := `SELECT difficulty, COUNT(*) AS count FROM questions GROUP BY difficulty ORDER BY difficulty`
	if err := a.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query difficulty distribution: %w", err)
	}

	distribution := make(map[int]int64, len(rows))
	for _, row := range rows {
		distribution[row.Difficulty] = row.Count
	}
	return distribution, nil
}

// buildFilterClause renders the filter conjunction as a WHERE clause.
// Predicates are applied in a fixed order: skill, area, difficulty, degree.
func buildFilterClause(filters domain.SampleFilters) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filters.Skill != "" {
		conditions = append(conditions, "LOWER(skill) = LOWER(?)")
		args = append(args, filters.Skill)
	}
	if filters.Area != "" {
		conditions = append(conditions, "LOWER(area) = LOWER(?)")
		args = append(args, filters.Area)
	}
	if filters.Difficulty != 0 {
		conditions = append(conditions, "difficulty = ?")
		args = append(args, filters.Difficulty)
	}
	if filters.Degree != "" {
		conditions = append(conditions, "LOWER(degree) = LOWER(?)")
		args = append(args, filters.Degree)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func distinctColumn(field string) (string, error) {
	switch field {
	case domain.FieldSkill:
		return "skill", nil
	case domain.FieldArea:
		return "area", nil
	case domain.FieldDegree:
		return "degree", nil
	}
	return "", fmt.Errorf("unsupported distinct field: %s", field)
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:            q.ID,
		Question:      q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   util.StringToNullString(q.Explanation),
		Difficulty:    q.Difficulty,
		Area:          q.Area,
		Skill:         q.Skill,
		Degree:        q.Degree,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:            m.ID,
		Text:          m.Question,
		OptionA:       m.OptionA,
		OptionB:       m.OptionB,
		OptionC:       m.OptionC,
		OptionD:       m.OptionD,
		CorrectAnswer: m.CorrectAnswer,
		Explanation:   util.NullStringToString(m.Explanation),
		Difficulty:    m.Difficulty,
		Area:          m.Area,
		Skill:         m.Skill,
		Degree:        m.Degree,
	}
}

func toDomainQuestions(rows []models.Question) []*domain.Question {
	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions
}

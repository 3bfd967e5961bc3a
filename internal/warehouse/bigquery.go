// Package warehouse implements the question store over Google BigQuery.
//
// BigQuery has no auto-increment and no transactions: ids are derived as
// max(id)+1 at insert time, rows are written through the streaming insert
// API, and reads issued right after a write may not observe the new rows
// yet. The adapter documents, rather than hides, these semantics.
package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"promptquest/internal/config"
	"promptquest/internal/domain"
	"promptquest/internal/logger"

	"cloud.google.com/go/bigquery"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// BigQueryAdapter implements domain.QuestionRepository over a BigQuery
// dataset table.
type BigQueryAdapter struct {
	client  *bigquery.Client
	project string
	dataset string
	table   string
}

// NewBigQueryAdapter creates the adapter and makes sure the questions
// table exists.
func NewBigQueryAdapter(ctx context.Context, cfg config.BigQueryConfig) (*BigQueryAdapter, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create BigQuery client: %w", err)
	}

	adapter := &BigQueryAdapter{
		client:  client,
		project: cfg.ProjectID,
		dataset: cfg.Dataset,
		table:   cfg.Table,
	}

	if err := adapter.ensureTable(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return adapter, nil
}

// Close releases the underlying client.
func (a *BigQueryAdapter) Close() error {
	return a.client.Close()
}

func (a *BigQueryAdapter) tableRef() string {
	return fmt.Sprintf("`%s.%s.%s`", a.project, a.dataset, a.table)
}

func (a *BigQueryAdapter) ensureTable(ctx context.Context) error {
	table := a.client.Dataset(a.dataset).Table(a.table)
	_, err := table.Metadata(ctx)
	if err == nil {
		return nil
	}
	if gerr, ok := err.(*googleapi.Error); !ok || gerr.Code != 404 {
		return fmt.Errorf("failed to read table metadata: %w", err)
	}

	schema := bigquery.Schema{
		{Name: "id", Type: bigquery.IntegerFieldType},
		{Name: "question", Type: bigquery.StringFieldType},
		{Name: "option_a", Type: bigquery.StringFieldType},
		{Name: "option_b", Type: bigquery.StringFieldType},
		{Name: "option_c", Type: bigquery.StringFieldType},
		{Name: "option_d", Type: bigquery.StringFieldType},
		{Name: "correct_answer", Type: bigquery.StringFieldType},
		{Name: "explanation", Type: bigquery.StringFieldType},
		{Name: "difficulty", Type: bigquery.IntegerFieldType},
		{Name: "area", Type: bigquery.StringFieldType},
		{Name: "skill", Type: bigquery.StringFieldType},
		{Name: "degree", Type: bigquery.StringFieldType},
	}
	if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return fmt.Errorf("failed to create table %s.%s: %w", a.dataset, a.table, err)
	}
	logger.Get().Info("Created BigQuery table",
		zap.String("dataset", a.dataset),
		zap.String("table", a.table))
	return nil
}

// Save implements domain.QuestionRepository. The id is derived as
// max(id)+1; when the derivation query fails, a time-based numeric
// surrogate keeps the id usable as int64. The streaming insert is
// best-effort: there is no transaction to roll back.
func (a *BigQueryAdapter) Save(ctx context.Context, q *domain.Question) (int64, error) {
	if q == nil {
		return 0, fmt.Errorf("cannot save nil question")
	}

	id := q.ID
	if id == 0 {
		id = a.nextID(ctx)
	}

	row := toRow(q)
	row.ID = id
	inserter := a.client.Dataset(a.dataset).Table(a.table).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return 0, fmt.Errorf("failed to insert question into BigQuery: %w", err)
	}
	q.ID = id
	return id, nil
}

// nextID derives the next id from the current maximum. BigQuery assigns
// nothing itself; when the derivation fails the surrogate is taken from
// the clock so it still fits the numeric id space.
func (a *BigQueryAdapter) nextID(ctx context.Context) int64 {
	query := a.client.Query(fmt.Sprintf("SELECT COALESCE(MAX(id), 0) AS max_id FROM %s", a.tableRef()))
	it, err := query.Read(ctx)
	if err != nil {
		logger.Get().Warn("Failed to derive next question id, using surrogate", zap.Error(err))
		return surrogateID(time.Now())
	}

	var row struct {
		MaxID int64 `bigquery:"max_id"`
	}
	if err := it.Next(&row); err != nil {
		logger.Get().Warn("Failed to read max question id, using surrogate", zap.Error(err))
		return surrogateID(time.Now())
	}
	return row.MaxID + 1
}

// FindAll implements domain.QuestionRepository. Without the ORDER BY the
// engine returns rows in arbitrary order.
func (a *BigQueryAdapter) FindAll(ctx context.Context) ([]*domain.Question, error) {
	query := a.client.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY id", a.tableRef()))
	return a.runQuery(ctx, query)
}

// FindByID implements domain.QuestionRepository. A miss returns (nil, nil).
func (a *BigQueryAdapter) FindByID(ctx context.Context, id int64) (*domain.Question, error) {
	query := a.client.Query(fmt.Sprintf("SELECT * FROM %s WHERE id = @id LIMIT 1", a.tableRef()))
	query.Parameters = []bigquery.QueryParameter{{Name: "id", Value: id}}

	questions, err := a.runQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get question by id %d: %w", id, err)
	}
	if len(questions) == 0 {
		return nil, nil
	}
	return questions[0], nil
}

// FindRandom implements domain.QuestionRepository.
func (a *BigQueryAdapter) FindRandom(ctx context.Context, limit int, filters domain.SampleFilters) ([]*domain.Question, error) {
	if limit <= 0 {
		return []*domain.Question{}, nil
	}

	sql, params := buildRandomQuery(a.tableRef(), limit, filters)
	query := a.client.Query(sql)
	query.Parameters = params

	questions, err := a.runQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query random questions: %w", err)
	}
	return questions, nil
}

// DeleteAll implements domain.QuestionRepository.
func (a *BigQueryAdapter) DeleteAll(ctx context.Context) error {
	query := a.client.Query(fmt.Sprintf("DELETE FROM %s WHERE TRUE", a.tableRef()))
	job, err := query.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to start delete job: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("failed to wait for delete job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("delete job failed: %w", err)
	}
	return nil
}

// CountAll implements domain.QuestionRepository. The count may lag behind
// rows written through the streaming insert buffer.
func (a *BigQueryAdapter) CountAll(ctx context.Context) (int64, error) {
	query := a.client.Query(fmt.Sprintf("SELECT COUNT(*) AS total FROM %s", a.tableRef()))
	it, err := query.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var row struct {
		Total int64 `bigquery:"total"`
	}
	if err := it.Next(&row); err != nil {
		return 0, fmt.Errorf("failed to read question count: %w", err)
	}
	return row.Total, nil
}

// DistinctValues implements domain.QuestionRepository.
func (a *BigQueryAdapter) DistinctValues(ctx context.Context, field string) ([]string, error) {
	column, err := distinctColumn(field)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("SELECT DISTINCT %s AS value FROM %s WHERE %s IS NOT NULL AND %s != '' ORDER BY %s",
		column, a.tableRef(), column, column, column)
	it, err := a.client.Query(sql).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s values: %w", field, err)
	}

	values := []string{}
	for {
		var row struct {
			Value string `bigquery:"value"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read distinct %s value: %w", field, err)
		}
		values = append(values, row.Value)
	}
	return values, nil
}

// DifficultyDistribution implements domain.QuestionRepository.
func (a *BigQueryAdapter) DifficultyDistribution(ctx context.Context) (map[int]int64, error) {
	sql := fmt.Sprintf("SELECT difficulty, COUNT(*) AS count FROM %s GROUP BY difficulty ORDER BY difficulty", a.tableRef())
	it, err := a.client.Query(sql).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query difficulty distribution: %w", err)
	}

	distribution := make(map[int]int64)
	for {
		var row struct {
			Difficulty int64 `bigquery:"difficulty"`
			Count      int64 `bigquery:"count"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read difficulty distribution row: %w", err)
		}
		distribution[int(row.Difficulty)] = row.Count
	}
	return distribution, nil
}

func (a *BigQueryAdapter) runQuery(ctx context.Context, query *bigquery.Query) ([]*domain.Question, error) {
	it, err := query.Read(ctx)
	if err != nil {
		return nil, err
	}

	questions := []*domain.Question{}
	for {
		var row questionRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		questions = append(questions, row.toDomain())
	}
	return questions, nil
}

// buildRandomQuery renders the filter conjunction with named parameters.
// Predicates are applied in a fixed order: skill, area, difficulty, degree.
func buildRandomQuery(tableRef string, limit int, filters domain.SampleFilters) (string, []bigquery.QueryParameter) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT * FROM %s WHERE 1=1", tableRef)

	var params []bigquery.QueryParameter
	if filters.Skill != "" {
		sb.WriteString(" AND LOWER(skill) = LOWER(@skill)")
		params = append(params, bigquery.QueryParameter{Name: "skill", Value: filters.Skill})
	}
	if filters.Area != "" {
		sb.WriteString(" AND LOWER(area) = LOWER(@area)")
		params = append(params, bigquery.QueryParameter{Name: "area", Value: filters.Area})
	}
	if filters.Difficulty != 0 {
		sb.WriteString(" AND difficulty = @difficulty")
		params = append(params, bigquery.QueryParameter{Name: "difficulty", Value: int64(filters.Difficulty)})
	}
	if filters.Degree != "" {
		sb.WriteString(" AND LOWER(degree) = LOWER(@degree)")
		params = append(params, bigquery.QueryParameter{Name: "degree", Value: filters.Degree})
	}

	sb.WriteString(" ORDER BY RAND() LIMIT @limit")
	params = append(params, bigquery.QueryParameter{Name: "limit", Value: int64(limit)})
	return sb.String(), params
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

// surrogateID folds the clock into the id space used by derived ids.
func surrogateID(now time.Time) int64 {
	return now.UnixMilli() % 1_000_000_000
}

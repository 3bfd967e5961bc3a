package warehouse

import (
	"cloud.google.com/go/bigquery"

	"promptquest/internal/domain"
)

// questionRow is the BigQuery representation of a question. Explanation is
// nullable in the table schema.
type questionRow struct {
	ID            int64               `bigquery:"id"`
	Question      string              `bigquery:"question"`
	OptionA       string              `bigquery:"option_a"`
	OptionB       string              `bigquery:"option_b"`
	OptionC       string              `bigquery:"option_c"`
	OptionD       string              `bigquery:"option_d"`
	CorrectAnswer string              `bigquery:"correct_answer"`
	Explanation   bigquery.NullString `bigquery:"explanation"`
	Difficulty    int64               `bigquery:"difficulty"`
	Area          string              `bigquery:"area"`
	Skill         string              `bigquery:"skill"`
	Degree        string              `bigquery:"degree"`
}

func toRow(q *domain.Question) *questionRow {
	return &questionRow{
		ID:            q.ID,
		Question:      q.Text,
		OptionA:       q.OptionA,
		OptionB:       q.OptionB,
		OptionC:       q.OptionC,
		OptionD:       q.OptionD,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   bigquery.NullString{StringVal: q.Explanation, Valid: q.Explanation != ""},
		Difficulty:    int64(q.Difficulty),
		Area:          q.Area,
		Skill:         q.Skill,
		Degree:        q.Degree,
	}
}

func (r *questionRow) toDomain() *domain.Question {
	explanation := ""
	if r.Explanation.Valid {
		explanation = r.Explanation.StringVal
	}
	return &domain.Question{
		ID:            r.ID,
		Text:          r.Question,
		OptionA:       r.OptionA,
		OptionB:       r.OptionB,
		OptionC:       r.OptionC,
		OptionD:       r.OptionD,
		CorrectAnswer: r.CorrectAnswer,
		Explanation:   explanation,
		Difficulty:    int(r.Difficulty),
		Area:          r.Area,
		Skill:         r.Skill,
		Degree:        r.Degree,
	}
}

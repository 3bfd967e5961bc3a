package models

import "database/sql"

// Question is the database representation of a question row.
type Question struct {
	ID            int64          `db:"id"`
	Question      string         `db:"question"`
	OptionA       string         `db:"option_a"`
	OptionB       string         `db:"option_b"`
	OptionC       string         `db:"option_c"`
	OptionD       string         `db:"option_d"`
	CorrectAnswer string         `db:"correct_answer"`
	Explanation   sql.NullString `db:"explanation"`
	Difficulty    int            `db:"difficulty"`
	Area          string         `db:"area"`
	Skill         string         `db:"skill"`
	Degree        string         `db:"degree"`
}

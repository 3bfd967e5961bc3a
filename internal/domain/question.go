package domain

import (
	"fmt"
	"strings"
)

// Degree levels a question can target.
const (
	DegreeJunior = "junior"
	DegreeMid    = "mid"
	DegreeSenior = "senior"
)

// AnswerLetters are the valid option keys, in slot order.
var AnswerLetters = []string{"A", "B", "C", "D"}

// Question represents a multiple-choice question in the domain.
// Questions are immutable once persisted: they are created by the import
// pipeline and removed only by a full clear.
type Question struct {
	ID            int64
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
	Explanation   string
	Difficulty    int
	Area          string
	Skill         string
	Degree        string
}

// NewQuestion creates a new Question instance.
func NewQuestion(text, optionA, optionB, optionC, optionD, correctAnswer, explanation string, difficulty int, area, skill, degree string) *Question {
	return &Question{
		Text:          text,
		OptionA:       optionA,
		OptionB:       optionB,
		OptionC:       optionC,
		OptionD:       optionD,
		CorrectAnswer: correctAnswer,
		Explanation:   explanation,
		Difficulty:    difficulty,
		Area:          area,
		Skill:         skill,
		Degree:        degree,
	}
}

// Validate validates the question. Option slots may be empty (the import
// pipeline fills absent keys with ""), but the prompt, classification tags
// and the answer letter must be well-formed.
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("question text is required")
	}
	switch q.CorrectAnswer {
	case "A", "B", "C", "D":
	default:
		return NewValidationError(fmt.Sprintf("correct answer must be one of A, B, C, D; got %q", q.CorrectAnswer))
	}
	if q.Difficulty < 1 || q.Difficulty > 5 {
		return NewValidationError(fmt.Sprintf("difficulty must be between 1 and 5; got %d", q.Difficulty))
	}
	if strings.TrimSpace(q.Area) == "" {
		return NewValidationError("area is required")
	}
	if strings.TrimSpace(q.Skill) == "" {
		return NewValidationError("skill is required")
	}
	switch q.Degree {
	case DegreeJunior, DegreeMid, DegreeSenior:
	default:
		return NewValidationError(fmt.Sprintf("degree must be junior, mid or senior; got %q", q.Degree))
	}
	return nil
}

// Option returns the option text for the given letter, or "" for an
// unknown letter.
func (q *Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// SampleFilters is the conjunction of predicates a sampled question must
// satisfy. Zero values ("" and 0) mean the predicate is not applied.
// String predicates compare case-insensitively, difficulty by exact
// numeric equality.
type SampleFilters struct {
	Skill      string
	Area       string
	Degree     string
	Difficulty int
}

// IsZero reports whether no predicate is set.
func (f SampleFilters) IsZero() bool {
	return f.Skill == "" && f.Area == "" && f.Degree == "" && f.Difficulty == 0
}

// Matches reports whether the question satisfies every set predicate.
func (f SampleFilters) Matches(q *Question) bool {
	if f.Skill != "" && !strings.EqualFold(f.Skill, q.Skill) {
		return false
	}
	if f.Area != "" && !strings.EqualFold(f.Area, q.Area) {
		return false
	}
	if f.Degree != "" && !strings.EqualFold(f.Degree, q.Degree) {
		return false
	}
	if f.Difficulty != 0 && f.Difficulty != q.Difficulty {
		return false
	}
	return true
}

package dto

// QuestionResponse represents a question served for answering: the correct
// answer and explanation are withheld.
type QuestionResponse struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	OptionA    string `json:"optionA"`
	OptionB    string `json:"optionB"`
	OptionC    string `json:"optionC"`
	OptionD    string `json:"optionD"`
	Area       string `json:"area"`
	Skill      string `json:"skill"`
	Difficulty int    `json:"difficulty"`
	Degree     string `json:"degree"`
}

// QuestionDetailResponse is the full entity, correct answer included.
type QuestionDetailResponse struct {
	QuestionResponse
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// QuestionResultResponse is the per-question outcome of a scoring call.
type QuestionResultResponse struct {
	ID            int64  `json:"id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	Explanation   string `json:"explanation"`
	OptionA       string `json:"optionA"`
	OptionB       string `json:"optionB"`
	OptionC       string `json:"optionC"`
	OptionD       string `json:"optionD"`
	Difficulty    int    `json:"difficulty"`
	Area          string `json:"area"`
	Skill         string `json:"skill"`
	Degree        string `json:"degree"`
}

// ScoreResponse aggregates a scoring call. QuestionResults are in
// ascending question-id order.
type ScoreResponse struct {
	TotalQuestions  int                      `json:"totalQuestions"`
	CorrectAnswers  int                      `json:"correctAnswers"`
	Score           float64                  `json:"score"`
	QuestionResults []QuestionResultResponse `json:"questionResults"`
}

// StatsResponse describes the current content of the question store.
type StatsResponse struct {
	TotalQuestions         int64         `json:"totalQuestions"`
	Skills                 []string      `json:"skills"`
	Areas                  []string      `json:"areas"`
	Degrees                []string      `json:"degrees"`
	DifficultyDistribution map[int]int64 `json:"difficultyDistribution"`
}

// ImportResponse reports an import run. On a partial failure Imported is
// the number of rows written before the failing record.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}

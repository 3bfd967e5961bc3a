package service

import (
	"context"
	"sort"

	"promptquest/internal/domain"
	"promptquest/internal/dto"
)

// QuizService serves randomized question subsets and scores submitted
// answers.
type QuizService interface {
	// GetAllQuestions returns the full bank, correct answers included.
	GetAllQuestions(ctx context.Context) ([]dto.QuestionDetailResponse, error)
	// Sample returns up to limit random questions matching every filter.
	// limit <= 0 yields an empty result; a limit above the matching
	// population yields the whole population.
	Sample(ctx context.Context, limit int, filters domain.SampleFilters) ([]dto.QuestionResponse, error)
	// Score resolves each submitted answer against the persisted correct
	// answer. Ids with no matching question are excluded from the result
	// and from the total.
	Score(ctx context.Context, answers map[int64]string) (*dto.ScoreResponse, error)
}

type quizService struct {
	repo domain.QuestionRepository
}

// NewQuizService creates a new instance of quizService.
func NewQuizService(repo domain.QuestionRepository) QuizService {
	return &quizService{repo: repo}
}

func (s *quizService) GetAllQuestions(ctx context.Context) ([]dto.QuestionDetailResponse, error) {
	questions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError("failed to get questions", err)
	}

	responses := make([]dto.QuestionDetailResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, dto.QuestionDetailResponse{
			QuestionResponse: toQuestionResponse(q),
			CorrectAnswer:    q.CorrectAnswer,
			Explanation:      q.Explanation,
		})
	}
	return responses, nil
}

func (s *quizService) Sample(ctx context.Context, limit int, filters domain.SampleFilters) ([]dto.QuestionResponse, error) {
	if limit <= 0 {
		return []dto.QuestionResponse{}, nil
	}

	questions, err := s.repo.FindRandom(ctx, limit, filters)
	if err != nil {
		return nil, domain.NewStorageError("failed to sample questions", err)
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, toQuestionResponse(q))
	}
	return responses, nil
}

func (s *quizService) Score(ctx context.Context, answers map[int64]string) (*dto.ScoreResponse, error) {
	// Callers render results in question order.
	ids := make([]int64, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := 0
	correct := 0
	results := make([]dto.QuestionResultResponse, 0, len(ids))

	for _, id := range ids {
		question, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, domain.NewStorageError("failed to resolve question for scoring", err)
		}
		if question == nil {
			// Unknown ids are skipped entirely rather than counted
			// against the caller.
			continue
		}

		userAnswer := answers[id]
		isCorrect := question.CorrectAnswer == userAnswer
		total++
		if isCorrect {
			correct++
		}

		results = append(results, dto.QuestionResultResponse{
			ID:            question.ID,
			Question:      question.Text,
			UserAnswer:    userAnswer,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     isCorrect,
			Explanation:   question.Explanation,
			OptionA:       question.OptionA,
			OptionB:       question.OptionB,
			OptionC:       question.OptionC,
			OptionD:       question.OptionD,
			Difficulty:    question.Difficulty,
			Area:          question.Area,
			Skill:         question.Skill,
			Degree:        question.Degree,
		})
	}

	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	return &dto.ScoreResponse{
		TotalQuestions:  total,
		CorrectAnswers:  correct,
		Score:           score,
		QuestionResults: results,
	}, nil
}

func toQuestionResponse(q *domain.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:         q.ID,
		Question:   q.Text,
		OptionA:    q.OptionA,
		OptionB:    q.OptionB,
		OptionC:    q.OptionC,
		OptionD:    q.OptionD,
		Area:       q.Area,
		Skill:      q.Skill,
		Difficulty: q.Difficulty,
		Degree:     q.Degree,
	}
}

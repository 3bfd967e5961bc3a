package handler

import (
	"encoding/json"
	"fmt"
	"strconv"

	"promptquest/internal/domain"
	"promptquest/internal/logger"
	"promptquest/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const defaultSampleSize = 10

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GetAllQuestions handles GET /api/quiz/questions. The full bank is
// returned with correct answers, intended for review tooling rather than
// quiz takers.
func (h *QuizHandler) GetAllQuestions(c *fiber.Ctx) error {
	questions, err := h.service.GetAllQuestions(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(questions)
}

// Sample handles GET /api/quiz/sample. Filters are optional query
// parameters; any combination narrows the candidate pool before the
// random draw.
func (h *QuizHandler) Sample(c *fiber.Ctx) error {
	limit := defaultSampleSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("limit must be an integer, got %q", raw))
		}
		limit = parsed
	}

	filters := domain.SampleFilters{
		Skill:  c.Query("skill"),
		Area:   c.Query("area"),
		Degree: c.Query("degree"),
	}
	if raw := c.Query("difficulty"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("difficulty must be an integer, got %q", raw))
		}
		filters.Difficulty = parsed
	}

	questions, err := h.service.Sample(c.Context(), limit, filters)
	if err != nil {
		return err
	}

	logger.Get().Debug("Served question sample",
		zap.Int("requested", limit),
		zap.Int("returned", len(questions)),
	)
	return c.JSON(questions)
}

// CheckAnswers handles POST /api/quiz/check. The body is a flat object
// mapping question ids to answer letters, e.g. {"1": "A", "2": "C"}.
func (h *QuizHandler) CheckAnswers(c *fiber.Ctx) error {
	var submitted map[string]string
	if err := json.Unmarshal(c.Body(), &submitted); err != nil {
		return domain.NewInvalidInputError("request body must map question ids to answer letters")
	}

	answers := make(map[int64]string, len(submitted))
	for key, answer := range submitted {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return domain.NewInvalidInputError(fmt.Sprintf("question id %q is not numeric", key))
		}
		answers[id] = answer
	}

	result, err := h.service.Score(c.Context(), answers)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"promptquest/internal/domain"
	"promptquest/internal/dto"
	"promptquest/internal/logger"
	"promptquest/internal/util"

	"go.uber.org/zap"
)

// ImportService ingests question-bank documents and exposes the admin
// operations built on top of the store.
type ImportService interface {
	// Import parses the document and writes every record through the
	// active store. The returned count is the number of rows written
	// before a failure; on the relational backend a failed batch rolls
	// back, on the warehouse the rows written so far persist.
	Import(ctx context.Context, document []byte, clearFirst bool) (int, error)
	// ImportFile reads the document from disk. A missing file is a
	// NOT_FOUND failure.
	ImportFile(ctx context.Context, path string, clearFirst bool) (int, error)
	// ImportDefault imports from the configured default path without
	// clearing existing data.
	ImportDefault(ctx context.Context) (int, error)
	// ClearAll removes every question. Idempotent.
	ClearAll(ctx context.Context) error
	// Stats summarizes the store content.
	Stats(ctx context.Context) (*dto.StatsResponse, error)
}

type importService struct {
	repo        domain.QuestionRepository
	txManager   domain.TransactionManager
	defaultPath string
}

// NewImportService creates a new instance of importService.
func NewImportService(repo domain.QuestionRepository, txManager domain.TransactionManager, defaultPath string) ImportService {
	return &importService{
		repo:        repo,
		txManager:   txManager,
		defaultPath: defaultPath,
	}
}

// questionBank is the wire shape of an importable document. The pointer
// slice distinguishes a missing "questions" field from an empty one.
type questionBank struct {
	Questions *[]rawQuestion `json:"questions"`
}

// rawQuestion uses pointer fields so a missing key can be told apart from
// a present-but-empty value.
type rawQuestion struct {
	Question    *string     `json:"question"`
	Answer      *string     `json:"answer"`
	Explanation *string     `json:"explanation"`
	Difficulty  *int        `json:"difficulty"`
	Area        *string     `json:"area"`
	Skill       *string     `json:"skill"`
	Degree      *string     `json:"degree"`
	Options     []rawOption `json:"options"`
}

type rawOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

func (s *importService) Import(ctx context.Context, document []byte, clearFirst bool) (int, error) {
	runID := util.NewULID()
	log := logger.Get().With(zap.String("import_run", runID))

	var bank questionBank
	if err := json.Unmarshal(document, &bank); err != nil {
		return 0, domain.NewSchemaError("document is not a valid question bank", err)
	}
	if bank.Questions == nil {
		return 0, domain.NewSchemaError("'questions' array not found in document", nil)
	}
	records := *bank.Questions
	log.Info("Starting import", zap.Int("records", len(records)), zap.Bool("clear_first", clearFirst))

	// The clear is deliberately outside the write transaction: recovering
	// from an interrupted import means re-running with clearFirst=true.
	if clearFirst {
		if err := s.repo.DeleteAll(ctx); err != nil {
			return 0, domain.NewStorageError("failed to clear existing questions", err)
		}
		log.Info("Cleared existing questions")
	}

	imported := 0
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for i := range records {
			question, err := mapRawQuestion(i, &records[i])
			if err != nil {
				return err
			}
			id, err := s.repo.Save(txCtx, question)
			if err != nil {
				return domain.NewStorageError(
					fmt.Sprintf("failed to save question at record %d", i), err)
			}
			imported++
			log.Debug("Imported question", zap.Int64("id", id), zap.Int("record", i))
		}
		return nil
	})
	if err != nil {
		log.Error("Import aborted", zap.Int("written_before_failure", imported), zap.Error(err))
		return imported, err
	}

	log.Info("Import finished", zap.Int("imported", imported))
	return imported, nil
}

func (s *importService) ImportFile(ctx context.Context, path string, clearFirst bool) (int, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, domain.NewNotFoundError(fmt.Sprintf("question bank file not found: %s", path))
		}
		return 0, domain.NewInternalError(fmt.Sprintf("failed to read question bank file %s", path), err)
	}
	return s.Import(ctx, document, clearFirst)
}

func (s *importService) ImportDefault(ctx context.Context) (int, error) {
	return s.ImportFile(ctx, s.defaultPath, false)
}

func (s *importService) ClearAll(ctx context.Context) error {
	logger.Get().Info("Clearing all questions")
	if err := s.repo.DeleteAll(ctx); err != nil {
		return domain.NewStorageError("failed to clear questions", err)
	}
	return nil
}

func (s *importService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	total, err := s.repo.CountAll(ctx)
	if err != nil {
		return nil, domain.NewStorageError("failed to count questions", err)
	}

	skills, err := s.repo.DistinctValues(ctx, domain.FieldSkill)
	if err != nil {
		return nil, domain.NewStorageError("failed to get distinct skills", err)
	}
	areas, err := s.repo.DistinctValues(ctx, domain.FieldArea)
	if err != nil {
		return nil, domain.NewStorageError("failed to get distinct areas", err)
	}
	degrees, err := s.repo.DistinctValues(ctx, domain.FieldDegree)
	if err != nil {
		return nil, domain.NewStorageError("failed to get distinct degrees", err)
	}

	counts, err := s.repo.DifficultyDistribution(ctx)
	if err != nil {
		return nil, domain.NewStorageError("failed to get difficulty distribution", err)
	}
	distribution := make(map[int]int64, 5)
	for level := 1; level <= 5; level++ {
		distribution[level] = counts[level]
	}

	return &dto.StatsResponse{
		TotalQuestions:         total,
		Skills:                 skills,
		Areas:                  areas,
		Degrees:                degrees,
		DifficultyDistribution: distribution,
	}, nil
}

// mapRawQuestion normalizes one raw record into the canonical entity.
// Required scalar keys must be present; the options list is projected into
// the four fixed slots with "" for absent keys.
func mapRawQuestion(index int, raw *rawQuestion) (*domain.Question, error) {
	required := []struct {
		name    string
		present bool
	}{
		{"question", raw.Question != nil},
		{"answer", raw.Answer != nil},
		{"explanation", raw.Explanation != nil},
		{"difficulty", raw.Difficulty != nil},
		{"area", raw.Area != nil},
		{"skill", raw.Skill != nil},
		{"degree", raw.Degree != nil},
	}
	for _, field := range required {
		if !field.present {
			return nil, domain.NewValidationError(
				fmt.Sprintf("record %d: required field %q is missing", index, field.name))
		}
	}

	options := make(map[string]string, len(raw.Options))
	for _, option := range raw.Options {
		options[option.Key] = option.Text
	}

	question := domain.NewQuestion(
		*raw.Question,
		options["A"],
		options["B"],
		options["C"],
		options["D"],
		*raw.Answer,
		*raw.Explanation,
		*raw.Difficulty,
		*raw.Area,
		*raw.Skill,
		*raw.Degree,
	)
	if err := question.Validate(); err != nil {
		if domainErr, ok := err.(*domain.DomainError); ok {
			return nil, domain.NewValidationError(fmt.Sprintf("record %d: %s", index, domainErr.Message))
		}
		return nil, err
	}
	return question, nil
}

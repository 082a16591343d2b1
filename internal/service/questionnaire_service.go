package service

import (
	"context"
	"strings"

	"terrascore/internal/models"
	"terrascore/internal/repository"
)

// QuestionnaireService provides questionnaire library business logic.
type QuestionnaireService struct {
	questionnaireRepo repository.QuestionnaireRepository
}

// NewQuestionnaireService returns a new QuestionnaireService.
func NewQuestionnaireService(questionnaireRepo repository.QuestionnaireRepository) *QuestionnaireService {
	return &QuestionnaireService{questionnaireRepo: questionnaireRepo}
}

// QuestionnaireInput carries create/update fields for a questionnaire.
type QuestionnaireInput struct {
	Title       string `json:"title"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Standard    string `json:"standard"`
}

func (in *QuestionnaireInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("title is required")
	}
	if len(in.Title) > 200 {
		return models.NewValidationError("title must be at most 200 characters")
	}
	return nil
}

// Create adds a new questionnaire to the library.
func (s *QuestionnaireService) Create(ctx context.Context, in QuestionnaireInput) (*models.Questionnaire, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	q := &models.Questionnaire{
		Title:       strings.TrimSpace(in.Title),
		Version:     in.Version,
		Description: in.Description,
		Standard:    in.Standard,
	}
	if err := s.questionnaireRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID returns a questionnaire with its questions.
func (s *QuestionnaireService) GetByID(ctx context.Context, id uint) (*models.Questionnaire, error) {
	return s.questionnaireRepo.GetByID(ctx, id)
}

// List returns questionnaires, optionally filtered by reporting standard.
func (s *QuestionnaireService) List(ctx context.Context, standard string, limit, offset int) ([]models.Questionnaire, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return s.questionnaireRepo.List(ctx, standard, limit, offset)
}

// Update applies changes to an existing questionnaire.
func (s *QuestionnaireService) Update(ctx context.Context, id uint, in QuestionnaireInput) (*models.Questionnaire, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	q, err := s.questionnaireRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	q.Title = strings.TrimSpace(in.Title)
	q.Version = in.Version
	q.Description = in.Description
	q.Standard = in.Standard
	q.Questions = nil

	if err := s.questionnaireRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return s.questionnaireRepo.GetByID(ctx, id)
}

// Delete removes a questionnaire. Questionnaires that still hold questions
// cannot be deleted; detach or delete the questions first.
func (s *QuestionnaireService) Delete(ctx context.Context, id uint) error {
	count, err := s.questionnaireRepo.CountQuestions(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return models.NewConflictError("Questionnaire still has questions attached")
	}
	return s.questionnaireRepo.Delete(ctx, id)
}

// Stats summarizes the questionnaire library.
func (s *QuestionnaireService) Stats(ctx context.Context) (*models.QuestionnaireStats, error) {
	return s.questionnaireRepo.Stats(ctx)
}

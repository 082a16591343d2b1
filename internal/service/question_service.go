package service

import (
	"context"
	"strings"

	"terrascore/internal/models"
	"terrascore/internal/repository"
)

// QuestionService provides question bank business logic.
type QuestionService struct {
	questionRepo      repository.QuestionRepository
	questionnaireRepo repository.QuestionnaireRepository
}

// NewQuestionService returns a new QuestionService.
func NewQuestionService(questionRepo repository.QuestionRepository, questionnaireRepo repository.QuestionnaireRepository) *QuestionService {
	return &QuestionService{
		questionRepo:      questionRepo,
		questionnaireRepo: questionnaireRepo,
	}
}

// QuestionInput carries create/update fields for a question.
type QuestionInput struct {
	QuestionnaireID *uint    `json:"questionnaire_id"`
	Text            string   `json:"text"`
	Type            string   `json:"type"`
	Weight          float64  `json:"weight"`
	Category        string   `json:"category"`
	RequireEvidence bool     `json:"require_evidence"`
	Options         []string `json:"options"`
}

func (in *QuestionInput) validate() (models.QuestionType, error) {
	if strings.TrimSpace(in.Text) == "" {
		return "", models.NewValidationError("text is required")
	}
	qtype := models.QuestionType(in.Type)
	if !qtype.Valid() {
		return "", models.NewValidationError("type must be one of: essay, multiple_choice")
	}
	if qtype == models.QuestionTypeMultipleChoice && len(in.Options) < 2 {
		return "", models.NewValidationError("multiple_choice questions need at least two options")
	}
	if qtype == models.QuestionTypeEssay && len(in.Options) > 0 {
		return "", models.NewValidationError("essay questions cannot have options")
	}
	if in.Weight <= 0 {
		return "", models.NewValidationError("weight must be positive")
	}
	if strings.TrimSpace(in.Category) == "" {
		return "", models.NewValidationError("category is required")
	}
	return qtype, nil
}

// Create adds a question, either attached to a questionnaire or to the
// shared bank when questionnaire_id is absent.
func (s *QuestionService) Create(ctx context.Context, in QuestionInput) (*models.Question, error) {
	qtype, err := in.validate()
	if err != nil {
		return nil, err
	}
	if in.QuestionnaireID != nil {
		if _, err := s.questionnaireRepo.GetByID(ctx, *in.QuestionnaireID); err != nil {
			return nil, err
		}
	}

	q := &models.Question{
		QuestionnaireID: in.QuestionnaireID,
		Text:            strings.TrimSpace(in.Text),
		Type:            qtype,
		Weight:          in.Weight,
		Category:        strings.TrimSpace(in.Category),
		RequireEvidence: in.RequireEvidence,
		Options:         in.Options,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetByID returns a single question.
func (s *QuestionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List returns questions matching the filter.
func (s *QuestionService) List(ctx context.Context, filter repository.QuestionFilter) ([]models.Question, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.questionRepo.List(ctx, filter)
}

// ListByStandard returns the public question preview for a reporting standard.
func (s *QuestionService) ListByStandard(ctx context.Context, standard string) ([]models.Question, error) {
	if strings.TrimSpace(standard) == "" {
		return nil, models.NewValidationError("standard is required")
	}
	return s.questionRepo.ListByStandard(ctx, standard)
}

// Update applies changes to an existing question.
func (s *QuestionService) Update(ctx context.Context, id uint, in QuestionInput) (*models.Question, error) {
	qtype, err := in.validate()
	if err != nil {
		return nil, err
	}

	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.QuestionnaireID != nil {
		if _, err := s.questionnaireRepo.GetByID(ctx, *in.QuestionnaireID); err != nil {
			return nil, err
		}
	}

	q.QuestionnaireID = in.QuestionnaireID
	q.Text = strings.TrimSpace(in.Text)
	q.Type = qtype
	q.Weight = in.Weight
	q.Category = strings.TrimSpace(in.Category)
	q.RequireEvidence = in.RequireEvidence
	q.Options = in.Options

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question.
func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	return s.questionRepo.Delete(ctx, id)
}

// Categories returns the distinct question categories.
func (s *QuestionService) Categories(ctx context.Context) ([]string, error) {
	return s.questionRepo.Categories(ctx)
}

// Stats summarizes the question bank.
func (s *QuestionService) Stats(ctx context.Context) (*models.QuestionStats, error) {
	return s.questionRepo.Stats(ctx)
}

package repository

import (
	"context"
	"errors"
	"strings"

	"terrascore/internal/cache"
	"terrascore/internal/models"

	"gorm.io/gorm"
)

// QuestionFilter narrows question listings. Zero values mean no filtering.
type QuestionFilter struct {
	Category        string
	Type            models.QuestionType
	Search          string
	QuestionnaireID *uint
	Limit           int
	Offset          int
}

// QuestionRepository defines persistence operations for the question bank.
type QuestionRepository interface {
	Create(ctx context.Context, q *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	List(ctx context.Context, filter QuestionFilter) ([]models.Question, error)
	ListByStandard(ctx context.Context, standard string) ([]models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id uint) error
	Categories(ctx context.Context) ([]string, error)
	Stats(ctx context.Context) (*models.QuestionStats, error)
}

type questionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository returns a new QuestionRepository implementation.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) Create(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestionCategories(ctx)
	if q.QuestionnaireID != nil {
		cache.InvalidateQuestionnaire(ctx, *q.QuestionnaireID)
	}
	return nil
}

func (r *questionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Question", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &q, nil
}

func (r *questionRepository) List(ctx context.Context, filter QuestionFilter) ([]models.Question, error) {
	var qs []models.Question
	q := r.db.WithContext(ctx).Model(&models.Question{})

	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(text) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.QuestionnaireID != nil {
		q = q.Where("questionnaire_id = ?", *filter.QuestionnaireID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	if err := q.Order("category, id").Find(&qs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return qs, nil
}

// ListByStandard returns the questions of all questionnaires aligned to the
// given reporting standard, for unauthenticated preview.
func (r *questionRepository) ListByStandard(ctx context.Context, standard string) ([]models.Question, error) {
	var qs []models.Question
	key := cache.PublicQuestionKey(standard)

	err := cache.Aside(ctx, key, &qs, cache.QuestionnaireTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Question{}).
			Joins("JOIN questionnaires ON questionnaires.id = questions.questionnaire_id").
			Where("questionnaires.standard = ?", standard).
			Order("questions.category, questions.id").
			Find(&qs).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return qs, nil
}

func (r *questionRepository) Update(ctx context.Context, q *models.Question) error {
	if err := r.db.WithContext(ctx).Save(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestionCategories(ctx)
	if q.QuestionnaireID != nil {
		cache.InvalidateQuestionnaire(ctx, *q.QuestionnaireID)
	}
	return nil
}

func (r *questionRepository) Delete(ctx context.Context, id uint) error {
	q, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestionCategories(ctx)
	if q.QuestionnaireID != nil {
		cache.InvalidateQuestionnaire(ctx, *q.QuestionnaireID)
	}
	return nil
}

func (r *questionRepository) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	err := cache.Aside(ctx, cache.QuestionCategoriesKey, &cats, cache.CategoriesTTL, func() error {
		if err := r.db.WithContext(ctx).Model(&models.Question{}).
			Distinct("category").
			Order("category").
			Pluck("category", &cats).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *questionRepository) Stats(ctx context.Context) (*models.QuestionStats, error) {
	stats := &models.QuestionStats{}

	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Count(&stats.Total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("type = ?", models.QuestionTypeEssay).
		Count(&stats.Essay).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("type = ?", models.QuestionTypeMultipleChoice).
		Count(&stats.MultipleChoice).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("require_evidence = ?", true).
		Count(&stats.RequireEvidence).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}

package repository

import (
	"context"
	"errors"

	"terrascore/internal/cache"
	"terrascore/internal/models"

	"gorm.io/gorm"
)

// QuestionnaireRepository defines persistence operations for questionnaires.
type QuestionnaireRepository interface {
	Create(ctx context.Context, q *models.Questionnaire) error
	GetByID(ctx context.Context, id uint) (*models.Questionnaire, error)
	List(ctx context.Context, standard string, limit, offset int) ([]models.Questionnaire, error)
	Update(ctx context.Context, q *models.Questionnaire) error
	Delete(ctx context.Context, id uint) error
	CountQuestions(ctx context.Context, id uint) (int64, error)
	Stats(ctx context.Context) (*models.QuestionnaireStats, error)
}

type questionnaireRepository struct {
	db *gorm.DB
}

// NewQuestionnaireRepository returns a new QuestionnaireRepository implementation.
func NewQuestionnaireRepository(db *gorm.DB) QuestionnaireRepository {
	return &questionnaireRepository{db: db}
}

func (r *questionnaireRepository) Create(ctx context.Context, q *models.Questionnaire) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.QuestionnaireListKey)
	return nil
}

func (r *questionnaireRepository) GetByID(ctx context.Context, id uint) (*models.Questionnaire, error) {
	var q models.Questionnaire
	key := cache.QuestionnaireKey(id)

	err := cache.Aside(ctx, key, &q, cache.QuestionnaireTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Questions").
			First(&q, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Questionnaire", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepository) List(ctx context.Context, standard string, limit, offset int) ([]models.Questionnaire, error) {
	var qs []models.Questionnaire
	q := r.db.WithContext(ctx).Model(&models.Questionnaire{})
	if standard != "" {
		q = q.Where("standard = ?", standard)
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&qs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return qs, nil
}

func (r *questionnaireRepository) Update(ctx context.Context, q *models.Questionnaire) error {
	if err := r.db.WithContext(ctx).Save(q).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateQuestionnaire(ctx, q.ID)
	return nil
}

func (r *questionnaireRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Questionnaire{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Questionnaire", id)
	}
	cache.InvalidateQuestionnaire(ctx, id)
	return nil
}

func (r *questionnaireRepository) CountQuestions(ctx context.Context, id uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("questionnaire_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *questionnaireRepository) Stats(ctx context.Context) (*models.QuestionnaireStats, error) {
	stats := &models.QuestionnaireStats{}

	if err := r.db.WithContext(ctx).Model(&models.Questionnaire{}).
		Count(&stats.TotalQuestionnaires).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Questionnaire{}).
		Where("standard <> ''").
		Distinct("standard").
		Count(&stats.TotalStandards).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Question{}).
		Where("questionnaire_id IS NOT NULL").
		Count(&stats.TotalQuestions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stats, nil
}

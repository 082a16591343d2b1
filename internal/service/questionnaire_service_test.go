package service

import (
	"context"
	"testing"

	"terrascore/internal/models"
	"terrascore/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestionnaireService(t *testing.T) (*QuestionnaireService, *QuestionService, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	return NewQuestionnaireService(questionnaireRepo),
		NewQuestionService(questionRepo, questionnaireRepo),
		db
}

func TestQuestionnaireService_CreateRequiresTitle(t *testing.T) {
	svc, _, _ := newQuestionnaireService(t)
	ctx := context.Background()

	var appErr *models.AppError
	_, err := svc.Create(ctx, QuestionnaireInput{Title: "  "})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	q, err := svc.Create(ctx, QuestionnaireInput{Title: "  GRI Core 2026 ", Standard: "GRI"})
	require.NoError(t, err)
	assert.Equal(t, "GRI Core 2026", q.Title)
}

func TestQuestionnaireService_DeleteRefusedWithQuestions(t *testing.T) {
	qnSvc, qSvc, _ := newQuestionnaireService(t)
	ctx := context.Background()

	qn, err := qnSvc.Create(ctx, QuestionnaireInput{Title: "Tailings Review", Standard: "SASB"})
	require.NoError(t, err)

	_, err = qSvc.Create(ctx, QuestionInput{
		QuestionnaireID: &qn.ID,
		Text:            "Is the tailings dam inspected quarterly?",
		Type:            "multiple_choice",
		Weight:          2,
		Category:        "environment",
		Options:         []string{"Yes", "No"},
	})
	require.NoError(t, err)

	var appErr *models.AppError
	err = qnSvc.Delete(ctx, qn.ID)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	// Empty questionnaires delete fine.
	empty, err := qnSvc.Create(ctx, QuestionnaireInput{Title: "Empty"})
	require.NoError(t, err)
	require.NoError(t, qnSvc.Delete(ctx, empty.ID))
}

func TestQuestionService_Validation(t *testing.T) {
	_, svc, _ := newQuestionnaireService(t)
	ctx := context.Background()

	base := QuestionInput{
		Text:     "Does the site monitor groundwater quality?",
		Type:     "essay",
		Weight:   1,
		Category: "environment",
	}

	tests := []struct {
		name   string
		mutate func(*QuestionInput)
	}{
		{"Empty text", func(in *QuestionInput) { in.Text = " " }},
		{"Unknown type", func(in *QuestionInput) { in.Type = "checkbox" }},
		{"Zero weight", func(in *QuestionInput) { in.Weight = 0 }},
		{"Empty category", func(in *QuestionInput) { in.Category = "" }},
		{"Essay with options", func(in *QuestionInput) { in.Options = []string{"Yes", "No"} }},
		{"Choice with one option", func(in *QuestionInput) {
			in.Type = "multiple_choice"
			in.Options = []string{"Yes"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			_, err := svc.Create(ctx, in)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
		})
	}
}

func TestQuestionService_CreateRejectsUnknownQuestionnaire(t *testing.T) {
	_, svc, _ := newQuestionnaireService(t)
	ctx := context.Background()

	missing := uint(404)
	var appErr *models.AppError
	_, err := svc.Create(ctx, QuestionInput{
		QuestionnaireID: &missing,
		Text:            "Orphan question?",
		Type:            "essay",
		Weight:          1,
		Category:        "social",
	})
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestQuestionService_UpdateMovesQuestion(t *testing.T) {
	qnSvc, qSvc, _ := newQuestionnaireService(t)
	ctx := context.Background()

	qn, err := qnSvc.Create(ctx, QuestionnaireInput{Title: "GRI Core", Standard: "GRI"})
	require.NoError(t, err)

	q, err := qSvc.Create(ctx, QuestionInput{
		Text:     "Bank question on community consultation",
		Type:     "essay",
		Weight:   1,
		Category: "social",
	})
	require.NoError(t, err)
	assert.Nil(t, q.QuestionnaireID)

	updated, err := qSvc.Update(ctx, q.ID, QuestionInput{
		QuestionnaireID: &qn.ID,
		Text:            q.Text,
		Type:            "essay",
		Weight:          2,
		Category:        "social",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.QuestionnaireID)
	assert.Equal(t, qn.ID, *updated.QuestionnaireID)
	assert.Equal(t, 2.0, updated.Weight)
}

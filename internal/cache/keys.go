package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	QuestionnaireKeyPrefix  = "questionnaire:%d"
	QuestionnaireListKey    = "questionnaires:all"
	QuestionCategoriesKey   = "questions:categories"
	RegistrationStatsKey    = "registration-requests:stats"
	PublicQuestionKeyPrefix = "questions:public:%s"
)

const (
	QuestionnaireTTL = 10 * time.Minute
	CategoriesTTL    = 30 * time.Minute
	StatsTTL         = 1 * time.Minute
)

func QuestionnaireKey(id uint) string {
	return fmt.Sprintf(QuestionnaireKeyPrefix, id)
}

func PublicQuestionKey(standard string) string {
	return fmt.Sprintf(PublicQuestionKeyPrefix, standard)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateQuestionnaire(ctx context.Context, id uint) {
	Invalidate(ctx, QuestionnaireKey(id))
	Invalidate(ctx, QuestionnaireListKey)
}

func InvalidateRegistrationStats(ctx context.Context) {
	Invalidate(ctx, RegistrationStatsKey)
}

func InvalidateQuestionCategories(ctx context.Context) {
	Invalidate(ctx, QuestionCategoriesKey)
}

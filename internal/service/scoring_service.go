package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"terrascore/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// ScoringService computes preliminary ESG scores from questionnaire answers.
// The result is indicative only; the certified score comes from an auditor
// review outside this system.
type ScoringService struct{}

// NewScoringService returns a new ScoringService.
func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// Analyze aggregates answers into per-pillar and overall scores. Answers on
// the 0..4 scale contribute value times weight; answers marked not relevant
// are excluded from both points and the attainable maximum.
func (s *ScoringService) Analyze(ctx context.Context, answers []models.AssessmentAnswer) (*models.AssessmentScore, error) {
	if len(answers) == 0 {
		return nil, models.NewValidationError("at least one answer is required")
	}

	type pillarAcc struct {
		points    float64
		maxPoints float64
		answered  int
		skipped   int
	}
	pillars := make(map[string]*pillarAcc)

	for i, a := range answers {
		if a.Category == "" {
			return nil, models.NewValidationError(fmt.Sprintf("answer %d is missing a category", i))
		}
		if a.Weight <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("answer %d has a non-positive weight", i))
		}
		if a.Value < models.AnswerNotRelevant || a.Value > models.AnswerMaxValue {
			return nil, models.NewValidationError(fmt.Sprintf("answer %d value must be between %d and %d", i, models.AnswerNotRelevant, models.AnswerMaxValue))
		}

		acc := pillars[a.Category]
		if acc == nil {
			acc = &pillarAcc{}
			pillars[a.Category] = acc
		}

		if a.Value == models.AnswerNotRelevant {
			acc.skipped++
			continue
		}
		acc.points += float64(a.Value) * a.Weight
		acc.maxPoints += float64(models.AnswerMaxValue) * a.Weight
		acc.answered++
	}

	score := &models.AssessmentScore{}
	for category, acc := range pillars {
		pillar := models.PillarScore{
			Category:  category,
			Points:    round2(acc.points),
			MaxPoints: round2(acc.maxPoints),
			Answered:  acc.answered,
			Skipped:   acc.skipped,
		}
		if acc.maxPoints > 0 {
			pillar.Percentage = round2(acc.points / acc.maxPoints * 100)
		}
		score.Pillars = append(score.Pillars, pillar)
		score.TotalPoints += acc.points
		score.MaxPoints += acc.maxPoints
	}
	sort.Slice(score.Pillars, func(i, j int) bool {
		return score.Pillars[i].Category < score.Pillars[j].Category
	})

	if score.MaxPoints > 0 {
		score.PercentageScore = round2(score.TotalPoints / score.MaxPoints * 100)
	}
	score.TotalPoints = round2(score.TotalPoints)
	score.MaxPoints = round2(score.MaxPoints)

	return score, nil
}

// DummyAnswers generates a plausible random answer set for demos and
// front-end development.
func (s *ScoringService) DummyAnswers(ctx context.Context, count int) []models.AssessmentAnswer {
	if count <= 0 {
		count = 12
	}
	if count > 200 {
		count = 200
	}

	categories := []string{"environment", "social", "governance"}
	answers := make([]models.AssessmentAnswer, 0, count)
	for i := 0; i < count; i++ {
		value := gofakeit.Number(0, models.AnswerMaxValue)
		// Roughly one in ten questions is marked not relevant.
		if gofakeit.Number(1, 10) == 1 {
			value = models.AnswerNotRelevant
		}
		answers = append(answers, models.AssessmentAnswer{
			QuestionID: uint(i + 1),
			Category:   categories[i%len(categories)],
			Weight:     float64(gofakeit.Number(1, 4)),
			Value:      value,
		})
	}
	return answers
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package models

// AnswerNotRelevant marks an answer excluded from scoring entirely.
const AnswerNotRelevant = -1

// AnswerMaxValue is the top of the 0..4 answer scale.
const AnswerMaxValue = 4

// AssessmentAnswer is one scored response in an ESG assessment submission.
// Value is on a 0..4 scale, or AnswerNotRelevant to exclude the question.
type AssessmentAnswer struct {
	QuestionID uint    `json:"question_id"`
	Category   string  `json:"category"`
	Weight     float64 `json:"weight"`
	Value      int     `json:"value"`
}

// PillarScore is the score of a single ESG pillar (category).
type PillarScore struct {
	Category   string  `json:"category"`
	Points     float64 `json:"points"`
	MaxPoints  float64 `json:"max_points"`
	Percentage float64 `json:"percentage"`
	Answered   int     `json:"answered"`
	Skipped    int     `json:"skipped"`
}

// AssessmentScore is the overall result of scoring one submission.
type AssessmentScore struct {
	Pillars         []PillarScore `json:"pillars"`
	TotalPoints     float64       `json:"total_points"`
	MaxPoints       float64       `json:"max_points"`
	PercentageScore float64       `json:"percentage_score"`
}

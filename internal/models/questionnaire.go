package models

import "time"

// QuestionType is the closed set of supported answer formats.
type QuestionType string

const (
	// QuestionTypeEssay expects a free-text answer.
	QuestionTypeEssay QuestionType = "essay"
	// QuestionTypeMultipleChoice expects one of the configured options.
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// Valid reports whether the question type is supported.
func (t QuestionType) Valid() bool {
	return t == QuestionTypeEssay || t == QuestionTypeMultipleChoice
}

// Questionnaire is a versioned set of assessment questions aligned to an ESG
// reporting standard (e.g. GRI, SASB).
type Questionnaire struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Version     string     `gorm:"size:40" json:"version,omitempty"`
	Description string     `gorm:"type:text" json:"description,omitempty"`
	Standard    string     `gorm:"size:80;index" json:"standard,omitempty"`
	Questions   []Question `gorm:"foreignKey:QuestionnaireID" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Question is a single weighted assessment item. QuestionnaireID is nullable:
// questions without one live in the shared question bank.
type Question struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	QuestionnaireID *uint        `gorm:"index" json:"questionnaire_id,omitempty"`
	Text            string       `gorm:"type:text;not null" json:"text"`
	Type            QuestionType `gorm:"type:varchar(20);not null" json:"type"`
	Weight          float64      `gorm:"not null" json:"weight"`
	Category        string       `gorm:"size:80;not null;index" json:"category"`
	RequireEvidence bool         `gorm:"not null;default:false" json:"require_evidence"`
	Options         []string     `gorm:"serializer:json" json:"options,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// QuestionnaireStats summarizes the questionnaire library.
type QuestionnaireStats struct {
	TotalQuestionnaires int64 `json:"total_questionnaires"`
	TotalStandards      int64 `json:"total_standards"`
	TotalQuestions      int64 `json:"total_questions"`
}

// QuestionStats summarizes the question bank by type.
type QuestionStats struct {
	Total           int64 `json:"total"`
	Essay           int64 `json:"essay"`
	MultipleChoice  int64 `json:"multiple_choice"`
	RequireEvidence int64 `json:"require_evidence"`
}

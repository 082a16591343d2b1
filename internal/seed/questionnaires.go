// Package seed provides built-in presets and demo data generation.
package seed

import (
	"errors"
	"fmt"
	"log"

	"terrascore/internal/models"

	"gorm.io/gorm"
)

type presetQuestion struct {
	Text            string
	Type            models.QuestionType
	Weight          float64
	Category        string
	RequireEvidence bool
	Options         []string
}

type presetQuestionnaire struct {
	Title       string
	Version     string
	Standard    string
	Description string
	Questions   []presetQuestion
}

var yesPartialNo = []string{"Yes", "Partially", "No"}

// builtInQuestionnaires is the starter library shipped with a fresh install.
var builtInQuestionnaires = []presetQuestionnaire{
	{
		Title:       "GRI Mining Core",
		Version:     "1.0",
		Standard:    "GRI",
		Description: "Baseline disclosure set for mining operators aligned to GRI.",
		Questions: []presetQuestion{
			{Text: "Does the operation publish annual freshwater withdrawal and discharge volumes?", Type: models.QuestionTypeEssay, Weight: 3, Category: "environment", RequireEvidence: true},
			{Text: "Is there a rehabilitation and closure fund covering all active sites?", Type: models.QuestionTypeMultipleChoice, Weight: 4, Category: "environment", RequireEvidence: true, Options: yesPartialNo},
			{Text: "Are Scope 1 and Scope 2 greenhouse gas emissions reported per site?", Type: models.QuestionTypeEssay, Weight: 3, Category: "environment", RequireEvidence: true},
			{Text: "Is a community grievance mechanism available in local languages?", Type: models.QuestionTypeMultipleChoice, Weight: 2, Category: "social", Options: yesPartialNo},
			{Text: "Describe the resettlement consultations conducted in the reporting period.", Type: models.QuestionTypeEssay, Weight: 2, Category: "social"},
			{Text: "Does the board have documented oversight of ESG risks?", Type: models.QuestionTypeMultipleChoice, Weight: 3, Category: "governance", Options: yesPartialNo},
			{Text: "Is there an anti-corruption policy with annual employee training?", Type: models.QuestionTypeMultipleChoice, Weight: 2, Category: "governance", RequireEvidence: true, Options: yesPartialNo},
		},
	},
	{
		Title:       "SASB Metals & Mining",
		Version:     "1.0",
		Standard:    "SASB",
		Description: "Metals and mining industry metrics per SASB.",
		Questions: []presetQuestion{
			{Text: "Report total energy consumed and the percentage from grid electricity.", Type: models.QuestionTypeEssay, Weight: 2, Category: "environment"},
			{Text: "Are tailings storage facilities inspected by an independent engineer?", Type: models.QuestionTypeMultipleChoice, Weight: 4, Category: "environment", RequireEvidence: true, Options: yesPartialNo},
			{Text: "Report the percentage of workforce covered by collective bargaining agreements.", Type: models.QuestionTypeEssay, Weight: 2, Category: "social"},
			{Text: "Is there a health and safety management system certified to ISO 45001?", Type: models.QuestionTypeMultipleChoice, Weight: 3, Category: "social", RequireEvidence: true, Options: yesPartialNo},
		},
	},
}

// Questionnaires seeds the built-in questionnaire library. Existing
// questionnaires with the same title are left untouched, so the seed is safe
// to run on every startup.
func Questionnaires(db *gorm.DB) error {
	for _, preset := range builtInQuestionnaires {
		var existing models.Questionnaire
		err := db.Where("title = ?", preset.Title).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("looking up questionnaire %q: %w", preset.Title, err)
		}

		questionnaire := models.Questionnaire{
			Title:       preset.Title,
			Version:     preset.Version,
			Standard:    preset.Standard,
			Description: preset.Description,
		}
		for _, q := range preset.Questions {
			questionnaire.Questions = append(questionnaire.Questions, models.Question{
				Text:            q.Text,
				Type:            q.Type,
				Weight:          q.Weight,
				Category:        q.Category,
				RequireEvidence: q.RequireEvidence,
				Options:         q.Options,
			})
		}

		if err := db.Create(&questionnaire).Error; err != nil {
			return fmt.Errorf("seeding questionnaire %q: %w", preset.Title, err)
		}
		log.Printf("seeded questionnaire %q with %d questions", preset.Title, len(preset.Questions))
	}
	return nil
}

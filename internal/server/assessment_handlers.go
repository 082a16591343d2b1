package server

import (
	"terrascore/internal/models"

	"github.com/gofiber/fiber/v2"
)

type analyzeRequest struct {
	Answers []models.AssessmentAnswer `json:"answers"`
}

// AnalyzeAssessment scores a set of questionnaire answers. The result is a
// preliminary indication only; certified scoring happens in auditor review.
func (s *Server) AnalyzeAssessment(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	score, err := s.scoringService.Analyze(c.UserContext(), req.Answers)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "score": score})
}

// GetDummyAssessment returns a randomly generated answer set with its score,
// for demos and front-end development.
func (s *Server) GetDummyAssessment(c *fiber.Ctx) error {
	count := c.QueryInt("count", 12)

	answers := s.scoringService.DummyAnswers(c.UserContext(), count)
	score, err := s.scoringService.Analyze(c.UserContext(), answers)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"answers": answers,
		"score":   score,
	})
}

package server

import (
	"terrascore/internal/models"
	"terrascore/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateQuestionnaire adds a questionnaire to the library.
func (s *Server) CreateQuestionnaire(c *fiber.Ctx) error {
	var in service.QuestionnaireInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	q, err := s.questionnaireService.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "questionnaire": q})
}

// GetQuestionnaires lists questionnaires, optionally filtered by standard.
func (s *Server) GetQuestionnaires(c *fiber.Ctx) error {
	standard := c.Query("standard")
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	qs, err := s.questionnaireService.List(c.UserContext(), standard, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "questionnaires": qs, "count": len(qs)})
}

// GetQuestionnaire returns one questionnaire with its questions.
func (s *Server) GetQuestionnaire(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	q, err := s.questionnaireService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "questionnaire": q})
}

// UpdateQuestionnaire applies changes to a questionnaire.
func (s *Server) UpdateQuestionnaire(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var in service.QuestionnaireInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	q, err := s.questionnaireService.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "questionnaire": q})
}

// DeleteQuestionnaire removes an empty questionnaire.
func (s *Server) DeleteQuestionnaire(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := s.questionnaireService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Questionnaire deleted"})
}

// GetQuestionnaireStats summarizes the questionnaire library.
func (s *Server) GetQuestionnaireStats(c *fiber.Ctx) error {
	stats, err := s.questionnaireService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

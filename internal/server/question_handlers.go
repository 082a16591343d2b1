package server

import (
	"terrascore/internal/models"
	"terrascore/internal/repository"
	"terrascore/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateQuestion adds a question to the bank or a questionnaire.
func (s *Server) CreateQuestion(c *fiber.Ctx) error {
	var in service.QuestionInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	q, err := s.questionService.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "question": q})
}

// GetQuestions lists questions with optional category, type, search and
// questionnaire filters.
func (s *Server) GetQuestions(c *fiber.Ctx) error {
	filter := repository.QuestionFilter{
		Category: c.Query("category"),
		Type:     models.QuestionType(c.Query("type")),
		Search:   c.Query("search"),
		Limit:    c.QueryInt("limit", 100),
		Offset:   c.QueryInt("offset", 0),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return respondError(c, models.NewValidationError("type must be one of: essay, multiple_choice"))
	}
	if qid := c.QueryInt("questionnaire_id", 0); qid > 0 {
		id := uint(qid)
		filter.QuestionnaireID = &id
	}

	qs, err := s.questionService.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "questions": qs, "count": len(qs)})
}

// GetQuestion returns a single question.
func (s *Server) GetQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	q, err := s.questionService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "question": q})
}

// UpdateQuestion applies changes to a question.
func (s *Server) UpdateQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	var in service.QuestionInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	q, err := s.questionService.Update(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "question": q})
}

// DeleteQuestion removes a question.
func (s *Server) DeleteQuestion(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	if err := s.questionService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Question deleted"})
}

// GetQuestionCategories returns the distinct categories in the bank.
func (s *Server) GetQuestionCategories(c *fiber.Ctx) error {
	cats, err := s.questionService.Categories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "categories": cats})
}

// GetQuestionStats summarizes the question bank.
func (s *Server) GetQuestionStats(c *fiber.Ctx) error {
	stats, err := s.questionService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

// GetPublicQuestions returns the unauthenticated preview of the questions for
// a reporting standard.
func (s *Server) GetPublicQuestions(c *fiber.Ctx) error {
	standard := c.Query("standard")

	qs, err := s.questionService.ListByStandard(c.UserContext(), standard)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "questions": qs, "count": len(qs)})
}

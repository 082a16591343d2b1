package server

import (
	"terrascore/internal/models"
	"terrascore/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitRegistrationRequest records a self-service signup for admin review.
func (s *Server) SubmitRegistrationRequest(c *fiber.Ctx) error {
	var in service.SubmitRegistrationInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	req, err := s.approvalService.Submit(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Registration request submitted and awaiting review",
		"request": req,
	})
}

// CheckRegistrationStatus lets an applicant poll the status of their latest request.
func (s *Server) CheckRegistrationStatus(c *fiber.Ctx) error {
	email := c.Params("email")

	status, err := s.approvalService.StatusByEmail(c.UserContext(), email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "registration": status})
}

// GetRegistrationRequests lists requests for the admin review queue,
// pending-first. An optional status query narrows the listing.
func (s *Server) GetRegistrationRequests(c *fiber.Ctx) error {
	var status *models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		st := models.RequestStatus(raw)
		if !st.Valid() {
			return respondError(c, models.NewValidationError("status must be one of: pending, approved, rejected"))
		}
		status = &st
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	reqs, err := s.approvalService.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "requests": reqs, "count": len(reqs)})
}

// GetRegistrationRequestStats returns the per-status counts for the dashboard.
func (s *Server) GetRegistrationRequestStats(c *fiber.Ctx) error {
	stats, err := s.approvalService.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

// ApproveRegistrationRequest turns a pending request into a live account.
func (s *Server) ApproveRegistrationRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	reviewerID := c.Locals("userID").(uint)

	account, err := s.approvalService.Approve(c.UserContext(), id, reviewerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Registration request approved",
		"user":    account,
	})
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

// RejectRegistrationRequest denies a pending request with a reason.
func (s *Server) RejectRegistrationRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	reviewerID := c.Locals("userID").(uint)

	var body rejectRequestBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.approvalService.Reject(c.UserContext(), id, reviewerID, body.Reason); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Registration request rejected",
	})
}

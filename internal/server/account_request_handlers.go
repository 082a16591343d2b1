package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"terrascore/internal/models"
	"terrascore/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const maxProofSize = 5 * 1024 * 1024

var allowedProofTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// SubmitAccountRequest accepts a multipart signup with an affiliation proof
// document. The document is stored on disk; only its metadata enters the ledger.
func (s *Server) SubmitAccountRequest(c *fiber.Ctx) error {
	file, err := c.FormFile("affiliationProof")
	if err != nil {
		return respondError(c, models.NewValidationError("affiliationProof file is required"))
	}
	if file.Size > maxProofSize {
		return respondError(c, models.NewValidationError("affiliation proof must be at most 5MB"))
	}

	contentType := file.Header.Get("Content-Type")
	ext, ok := allowedProofTypes[strings.ToLower(contentType)]
	if !ok {
		return respondError(c, models.NewValidationError("affiliation proof must be a PDF, JPEG or PNG"))
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(s.config.UploadDir, storedName)
	if err := c.SaveFile(file, storedPath); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	req, err := s.accountService.Submit(c.UserContext(), service.SubmitAccountInput{
		Username:      c.FormValue("username"),
		Email:         c.FormValue("email"),
		CompanyName:   c.FormValue("companyName"),
		ProofFileName: file.Filename,
		ProofPath:     storedPath,
		ProofType:     contentType,
	})
	if err != nil {
		// The submission was refused, drop the orphaned upload.
		os.Remove(storedPath)
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Account request submitted and awaiting review",
		"request": req,
	})
}

// GetAccountRequests lists account requests for the admin queue, pending-first.
func (s *Server) GetAccountRequests(c *fiber.Ctx) error {
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

	reqs, err := s.accountService.List(c.UserContext(), status, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "requests": reqs, "count": len(reqs)})
}

// GetAccountRequest returns one account request with its proof metadata.
func (s *Server) GetAccountRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}

	req, err := s.accountService.GetByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "request": req})
}

// ApproveAccountRequest creates the account with admin-assigned credentials.
func (s *Server) ApproveAccountRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	reviewerID := c.Locals("userID").(uint)

	var in service.ApproveAccountInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	account, err := s.accountService.Approve(c.UserContext(), id, reviewerID, in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Account created for %s", account.Username),
		"user":    account,
	})
}

type rejectAccountBody struct {
	Notes string `json:"notes"`
}

// RejectAccountRequest denies a pending account request with admin notes.
func (s *Server) RejectAccountRequest(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	reviewerID := c.Locals("userID").(uint)

	var body rejectAccountBody
	if err := c.BodyParser(&body); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.accountService.Reject(c.UserContext(), id, reviewerID, body.Notes); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account request rejected",
	})
}

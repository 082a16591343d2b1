package models

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// StatusForError maps an application error to its HTTP status code.
// Unknown errors map to 500.
func StatusForError(err error) int {
	if appErr, ok := err.(*AppError); ok {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return fiber.StatusBadRequest
		case "CONFLICT":
			return fiber.StatusConflict
		case "NOT_FOUND":
			return fiber.StatusNotFound
		case "UNAUTHORIZED":
			return fiber.StatusUnauthorized
		case "FORBIDDEN":
			return fiber.StatusForbidden
		}
	}
	return fiber.StatusInternalServerError
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	response := ErrorResponse{Success: false}

	if appErr, ok := err.(*AppError); ok {
		response.Message = appErr.Message
		response.Code = appErr.Code
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response.Message = err.Error()
	}

	return c.Status(status).JSON(response)
}

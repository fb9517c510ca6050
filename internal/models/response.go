package models

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// APIResponse is the envelope every successful handler writes.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the envelope written for every failed request.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// NewAPIResponse builds a success envelope; success is derived from the status.
func NewAPIResponse(status int, data any, message string) APIResponse {
	if message == "" {
		message = "Success"
	}
	return APIResponse{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < fiber.StatusBadRequest,
	}
}

// Respond writes a success envelope with the given status.
func Respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(NewAPIResponse(status, data, message))
}

// NewErrorResponse converts any error into the error envelope and its status.
// Internal details never reach the client.
func NewErrorResponse(err error) ErrorResponse {
	status := fiber.StatusInternalServerError
	message := "Internal server error"
	details := []string{}

	var appErr *AppError
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status()
		message = appErr.Message
		if len(appErr.Details) > 0 {
			details = appErr.Details
		}
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return ErrorResponse{
		StatusCode: status,
		Message:    message,
		Success:    false,
		Errors:     details,
	}
}

// RespondWithError writes the error envelope for err.
func RespondWithError(c *fiber.Ctx, err error) error {
	resp := NewErrorResponse(err)
	return c.Status(resp.StatusCode).JSON(resp)
}

package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// FieldError mirrors forms.FieldError in the response schema.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// ValidationErrorResponse sends every field problem at once (422)
func ValidationErrorResponse(c *fiber.Ctx, fields []FieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":    fiber.StatusUnprocessableEntity,
		"message":   "validation failed",
		"ok":        false,
		"errors":    fields,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "validation",
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"status":       fiber.StatusConflict,
		"message":      "E_VERSION - Settings changed since they were loaded. Reload and retry.",
		"ok":           false,
		"versionError": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         "version",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// MutationSuccessResponse sends a success response for writes, with the
// stored record when there is one
func MutationSuccessResponse(c *fiber.Ctx, data interface{}) error {
	body := fiber.Map{
		"message":   "Success",
		"ok":        true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(fiber.StatusOK).JSON(body)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int          `json:"status"`
	Message      string       `json:"message"`
	Ok           bool         `json:"ok"`
	Timestamp    string       `json:"timestamp"`
	URL          string       `json:"url"`
	Type         string       `json:"type,omitempty"`
	VersionError bool         `json:"versionError,omitempty"`
	Errors       []FieldError `json:"errors,omitempty"`
}

// SuccessResponseStruct defines the schema for mutation success responses
type SuccessResponseStruct struct {
	Message   string      `json:"message"`
	Ok        bool        `json:"ok"`
	Timestamp string      `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

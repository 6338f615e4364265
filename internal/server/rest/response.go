package rest

import (
	"errors"

	"github.com/akansh-agarwalalwar/online-dudhiya-frontend-app-sub001/internal/api"
	"github.com/gofiber/fiber/v2"
)

func respondWithError(c *fiber.Ctx, status int, message string, details ...string) error {
	resp := api.ErrorResponse{Error: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	return c.Status(status).JSON(resp)
}

func respondBadRequest(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusBadRequest, message)
}

// errorHandler renders errors returned by handlers in the ErrorResponse shape.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return respondWithError(c, code, err.Error())
}

func respondUnauthorized(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusUnauthorized, message)
}

func respondInternalError(c *fiber.Ctx, message string, details string) error {
	return respondWithError(c, fiber.StatusInternalServerError, message, details)
}

func respondOK(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/lalunarecs/audiomoth-server/internal/errs"
	"github.com/lalunarecs/audiomoth-server/internal/logger"
)

// ErrorHandler is the app-level fiber error handler. Benign peer disconnects
// are classified and dropped: the connection is already gone and there is
// nobody left to answer. Anything else is logged once and turned into a plain
// text status response; per-request errors never take the server down.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if errs.IsBenignDisconnect(err) {
		return nil
	}

	// Default status code
	code := fiber.StatusInternalServerError

	// Check if it's a fiber error
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	// Only unexpected faults are worth an error-level entry; a 404 is a
	// normal outcome for a file server.
	if code >= fiber.StatusInternalServerError {
		logger.Get().Error().
			Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", code).
			Msg("HTTP error")
	}

	return c.Status(code).SendString(http.StatusText(code))
}

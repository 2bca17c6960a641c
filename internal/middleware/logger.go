package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lalunarecs/audiomoth-server/internal/errs"
	"github.com/lalunarecs/audiomoth-server/internal/logger"
)

// LoggerConfig defines the config for the logger middleware
type LoggerConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Logger is the zerolog logger instance to use.
	// If not provided, the default logger will be used.
	Logger *zerolog.Logger

	// ShouldLog filters requests by path. Requests for which it returns false
	// (images, directory probes, favicon noise) produce no log line at all.
	// Optional. Default: nil (log everything)
	ShouldLog func(path string) bool
}

// DefaultLoggerConfig is the default config
var DefaultLoggerConfig = LoggerConfig{
	Next:      nil,
	ShouldLog: nil,
}

// NewLogger creates a new middleware handler
func NewLogger(config ...LoggerConfig) fiber.Handler {
	// Set default config
	cfg := DefaultLoggerConfig

	// Override config if provided
	if len(config) > 0 {
		cfg = config[0]
	}

	// Set default logger if not provided
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	// Return new handler
	return func(c *fiber.Ctx) error {
		// Skip middleware if Next returns true
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		// Start timer
		start := time.Now()

		// Handle request
		err := c.Next()

		// c.Path() is already percent-decoded, which is what we want in the
		// log: AudioMoth file names contain spaces and colons.
		path := c.Path()
		if cfg.ShouldLog != nil && !cfg.ShouldLog(path) {
			return err
		}

		event := cfg.Logger.Info().
			Str("method", c.Method()).
			Str("path", path).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start))

		// Peer disconnects are expected during audio seeking; keep them out
		// of the log line.
		if err != nil && !errs.IsBenignDisconnect(err) {
			event = event.Err(err)
		}

		event.Msg("request")

		return err
	}
}

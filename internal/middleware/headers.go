package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// HeadersConfig defines the config for the response headers middleware
type HeadersConfig struct {
	// Skip defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// IsAudio decides whether the request path gets the audio caching headers.
	// Optional. Default: nil (no audio headers)
	IsAudio func(path string) bool

	// CacheMaxAge is the Cache-Control max-age in seconds for audio paths.
	// Optional. Default: 3600
	CacheMaxAge int
}

// DefaultHeadersConfig is the default config
var DefaultHeadersConfig = HeadersConfig{
	Next:        nil,
	IsAudio:     nil,
	CacheMaxAge: 3600,
}

// NewHeaders creates a middleware that stamps every response with the
// permissive CORS headers this single-user tool relies on, adds caching and
// range headers for audio paths, and answers OPTIONS preflights directly.
func NewHeaders(config ...HeadersConfig) fiber.Handler {
	// Set default config
	cfg := DefaultHeadersConfig

	// Override config if provided
	if len(config) > 0 {
		cfg = config[0]

		if cfg.CacheMaxAge == 0 {
			cfg.CacheMaxAge = DefaultHeadersConfig.CacheMaxAge
		}
	}

	return func(c *fiber.Ctx) error {
		// Skip middleware if Next returns true
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, "GET, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "*")

		// The original tool keys these off the request path, not the response,
		// so they appear even on a 404 for a .wav path. Kept that way.
		if cfg.IsAudio != nil && cfg.IsAudio(c.Path()) {
			c.Set(fiber.HeaderCacheControl, "max-age="+strconv.Itoa(cfg.CacheMaxAge))
			c.Set(fiber.HeaderAcceptRanges, "bytes")
		}

		// CORS preflight: 200, empty body, regardless of path. Status only;
		// SendStatus would fill the body with the status text.
		if c.Method() == fiber.MethodOptions {
			c.Status(fiber.StatusOK)
			return nil
		}

		return c.Next()
	}
}

package elevenlabs

import (
	"log/slog"
	"net/http"
	"time"
)

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Controller) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.client = client
	}
}

// WithTimeout bounds each audio download. Zero leaves the download bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithMaxBytes caps the size of a downloaded recording. Zero disables the cap.
func WithMaxBytes(n int64) Option {
	return func(c *Controller) {
		c.maxBytes = n
	}
}

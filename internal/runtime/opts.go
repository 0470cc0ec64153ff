package runtime

import (
	"log/slog"
	"time"
)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLambdaPayloadType selects the event shape expected in Lambda mode.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		if payloadType != "" {
			r.payloadType = payloadType
		}
	}
}

// WithMaxBodyBytes caps streamed request bodies. Zero or less disables the cap.
func WithMaxBodyBytes(n int64) Option {
	return func(r *Runtime) {
		r.maxBodyBytes = n
	}
}

// WithRateLimit enables per-client rate limiting of HTTP requests.
func WithRateLimit(perMinute, burst, clients int, ttl time.Duration) Option {
	return func(r *Runtime) {
		if perMinute > 0 {
			r.limiter = newRateLimiter(perMinute, burst, clients, ttl)
		}
	}
}

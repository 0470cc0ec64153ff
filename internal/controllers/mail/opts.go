package mail

import "log/slog"

// WithLogger sets a custom logger for the Controller instance to use for logging operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithFrom sets the sender address.
func WithFrom(from string) Option {
	return func(c *Controller) {
		c.from = from
	}
}

// WithTo sets the recipient addresses. Empty entries are ignored.
func WithTo(to ...string) Option {
	return func(c *Controller) {
		for _, rcpt := range to {
			if rcpt != "" {
				c.to = append(c.to, rcpt)
			}
		}
	}
}

// WithTransport sets the delivery transport.
func WithTransport(transport Transport) Option {
	return func(c *Controller) {
		c.transport = transport
	}
}

package handler

import (
	"log/slog"
	"time"

	"github.com/isometry/convai-webhook/internal/validation"
)

// WithLogger sets the logger instance for the handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithVerifier sets the signature verifier.
func WithVerifier(verifier *validation.Verifier) Option {
	return func(h *Handler) {
		h.verifier = verifier
	}
}

// WithSignatureHeader overrides the header carrying the signature. Lookups are case-insensitive.
func WithSignatureHeader(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.signatureHeader = name
		}
	}
}

// WithAudioFetcher sets the collaborator retrieving recordings.
func WithAudioFetcher(fetcher AudioFetcher) Option {
	return func(h *Handler) {
		h.fetcher = fetcher
	}
}

// WithDispatcher sets the collaborator delivering notifications.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(h *Handler) {
		h.dispatcher = dispatcher
	}
}

// WithArchiver enables archiving of processed conversations.
func WithArchiver(archiver Archiver) Option {
	return func(h *Handler) {
		h.archiver = archiver
	}
}

// WithSubject sets the notification subject.
func WithSubject(subject string) Option {
	return func(h *Handler) {
		if subject != "" {
			h.subject = subject
		}
	}
}

// WithClock replaces the clock used for replay protection.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

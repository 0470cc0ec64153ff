package handler

import (
	"net/http"

	"github.com/isometry/convai-webhook/internal/conversation"
	"github.com/isometry/convai-webhook/internal/validation"
	"github.com/pkg/errors"
)

const (
	MessageSuccess    = "Webhook processed successfully"
	MessageSoftError  = "Processed with errors"
	ErrorMethod       = "Only POST requests allowed"
	ErrorExpired      = "Request expired"
	errorInternal     = "Internal server error"
	errorBodyRead     = "Failed to read request body"
	errorMissingSig   = "Missing signature header"
	errorMalformedSig = "Invalid signature format"
	errorInvalidSig   = "Invalid signature"
	errorFuture       = "Request timestamp in the future"
	errorMalformed    = "Invalid JSON payload"
	errorEventType    = "Unsupported event type"
	errorMissingID    = "Missing conversation_id"
	errorAudio        = "Failed to fetch audio"
	errorDelivery     = "Failed to send email"
)

// Outcome classifies how a delivery was resolved.
type Outcome int

const (
	// Success means every step completed.
	Success Outcome = iota
	// SoftError means the delivery was accepted but a downstream step failed.
	SoftError
	// Rejected means the delivery was refused: bad method, signature or payload.
	Rejected
	// Fatal means the delivery could not be handled at all.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case SoftError:
		return "soft-error"
	case Rejected:
		return "rejected"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// State is a step of the processing pipeline.
type State int

const (
	ReceivingBody State = iota
	Verifying
	Parsing
	Formatting
	FetchingAudio
	Notifying
	Responded
)

func (s State) String() string {
	switch s {
	case ReceivingBody:
		return "receiving-body"
	case Verifying:
		return "verifying"
	case Parsing:
		return "parsing"
	case Formatting:
		return "formatting"
	case FetchingAudio:
		return "fetching-audio"
	case Notifying:
		return "notifying"
	case Responded:
		return "responded"
	default:
		return "unknown"
	}
}

// authStatus maps a signature verification failure to its status code and public message.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrExpired):
		return http.StatusForbidden, ErrorExpired
	case errors.Is(err, validation.ErrTimestampInFuture):
		return http.StatusForbidden, errorFuture
	case errors.Is(err, validation.ErrMissingSignature):
		return http.StatusUnauthorized, errorMissingSig
	case errors.Is(err, validation.ErrMalformedSignature):
		return http.StatusUnauthorized, errorMalformedSig
	case errors.Is(err, validation.ErrInvalidSignature):
		return http.StatusUnauthorized, errorInvalidSig
	default:
		return http.StatusInternalServerError, errorInternal
	}
}

// parseStatus maps a payload failure to its status code and public message.
func parseStatus(err error) (int, string) {
	switch {
	case errors.Is(err, conversation.ErrUnsupportedEventType):
		return http.StatusBadRequest, errorEventType
	case errors.Is(err, conversation.ErrMissingConversationID):
		return http.StatusBadRequest, errorMissingID
	default:
		return http.StatusBadRequest, errorMalformed
	}
}

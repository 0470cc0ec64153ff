// Package handler implements the post-call webhook pipeline: verify, parse, fetch the recording and notify.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/isometry/convai-webhook/internal/controllers/mail"
	"github.com/isometry/convai-webhook/internal/conversation"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/isometry/convai-webhook/internal/validation"
	"github.com/pkg/errors"
)

// AudioFetcher retrieves the recording of a conversation.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, conversationID string) (*models.AudioAsset, error)
}

// Dispatcher delivers a notification.
type Dispatcher interface {
	Send(ctx context.Context, notification models.NotificationMessage) error
}

// Archiver keeps a copy of a processed conversation. Archive failures never affect the response.
type Archiver interface {
	Archive(ctx context.Context, event *models.WebhookEvent, asset *models.AudioAsset, text string) error
}

// Option is a functional option used to configure a Handler.
type Option func(*Handler)

// Handler runs the webhook pipeline. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	logger          *slog.Logger
	verifier        *validation.Verifier
	signatureHeader string
	fetcher         AudioFetcher
	dispatcher      Dispatcher
	archiver        Archiver
	subject         string
	now             func() time.Time
}

// Result is the resolution of a single delivery.
type Result struct {
	Response models.Response
	Outcome  Outcome
	// State is the last step entered before moving to Responded.
	State          State
	ConversationID string
	// Notification is the message built for the delivery, if processing got that far.
	Notification *models.NotificationMessage
	// Err is the internal cause behind a non-success outcome. It is logged, never returned to the caller.
	Err error
}

// NewWebhookHandler creates a Handler. A verifier, an audio fetcher and a dispatcher are required.
func NewWebhookHandler(options ...Option) (*Handler, error) {
	_inst := &Handler{
		logger:          helpers.NewNoopLogger(),
		signatureHeader: validation.DefaultHeader,
		subject:         mail.DefaultSubject,
		now:             time.Now,
	}
	for _, opt := range options {
		opt(_inst)
	}

	switch {
	case _inst.verifier == nil:
		return nil, errors.New("missing signature verifier")
	case _inst.fetcher == nil:
		return nil, errors.New("missing audio fetcher")
	case _inst.dispatcher == nil:
		return nil, errors.New("missing notification dispatcher")
	}
	return _inst, nil
}

func (r *Result) enter(logger *slog.Logger, state State) {
	r.State = state
	logger.Debug("entering state", slog.String("state", state.String()))
}

func (r *Result) resolve(outcome Outcome, status int, message, public string, cause error) *Result {
	r.Outcome = outcome
	r.Err = cause
	r.Response = models.Response{StatusCode: status, Message: message, Error: public}
	return r
}

func (r *Result) reject(status int, public string, cause error) *Result {
	return r.resolve(Rejected, status, "", public, cause)
}

func (r *Result) soft(public string, cause error) *Result {
	return r.resolve(SoftError, http.StatusOK, MessageSoftError, public, cause)
}

// Process runs one delivery through the pipeline. Every path, including a panic in a collaborator, produces exactly one Response.
func (h *Handler) Process(ctx context.Context, req models.Request) (result *Result) {
	result = &Result{}
	logger := h.logger
	start := h.now()

	defer func() {
		if rec := recover(); rec != nil {
			cause := errors.Errorf("panic: %v", rec)
			if result.State > Verifying {
				result.soft(errorInternal, cause)
			} else {
				result.resolve(Fatal, http.StatusInternalServerError, "", errorInternal, cause)
			}
		}
		attrs := []any{
			slog.String("outcome", result.Outcome.String()),
			slog.String("lastState", result.State.String()),
			slog.Int("status", result.Response.StatusCode),
			slog.Duration("elapsed", h.now().Sub(start)),
		}
		switch result.Outcome {
		case Success:
			logger.Info("webhook processed", attrs...)
		case Rejected:
			logger.Warn("webhook rejected", append(attrs, slog.Any("error", result.Err))...)
		default:
			logger.Error("webhook processed with errors", append(attrs, slog.Any("error", result.Err))...)
		}
	}()

	if !strings.EqualFold(req.Method, http.MethodPost) {
		return result.reject(http.StatusMethodNotAllowed, ErrorMethod, errors.Errorf("method %q not allowed", req.Method))
	}

	result.enter(logger, ReceivingBody)
	body := []byte{}
	if req.Body != nil {
		var err error
		if body, err = req.Body.Bytes(ctx); err != nil {
			return result.resolve(Fatal, http.StatusInternalServerError, "", errorBodyRead, err)
		}
	}

	result.enter(logger, Verifying)
	header := req.Headers[strings.ToLower(h.signatureHeader)]
	if err := h.verifier.Verify(body, header, h.now()); err != nil {
		status, public := authStatus(err)
		if status == http.StatusInternalServerError {
			return result.resolve(Fatal, status, "", public, err)
		}
		return result.reject(status, public, err)
	}
	logger.Debug("signature is valid")

	result.enter(logger, Parsing)
	event, err := conversation.Parse(body)
	if err != nil {
		status, public := parseStatus(err)
		return result.reject(status, public, err)
	}
	result.ConversationID = event.ConversationID
	logger = logger.With(slog.String("conversationId", event.ConversationID))

	result.enter(logger, Formatting)
	notification := &models.NotificationMessage{
		Subject:  h.subject,
		BodyText: conversation.FormatBody(event),
	}
	result.Notification = notification

	result.enter(logger, FetchingAudio)
	asset, err := h.fetcher.FetchAudio(ctx, event.ConversationID)
	if err != nil {
		h.archive(ctx, logger, event, nil, notification.BodyText)
		return result.soft(errorAudio, errors.Wrap(err, "audio fetch failed"))
	}
	notification.Attachment = asset

	result.enter(logger, Notifying)
	sendErr := h.dispatcher.Send(ctx, *notification)
	h.archive(ctx, logger, event, asset, notification.BodyText)
	if sendErr != nil {
		return result.soft(errorDelivery, errors.Wrap(sendErr, "notification failed"))
	}

	return result.resolve(Success, http.StatusOK, MessageSuccess, "", nil)
}

func (h *Handler) archive(ctx context.Context, logger *slog.Logger, event *models.WebhookEvent, asset *models.AudioAsset, text string) {
	if h.archiver == nil {
		return
	}
	if err := h.archiver.Archive(ctx, event, asset, text); err != nil {
		logger.Warn("failed to archive conversation", slog.Any("error", err))
	}
}

// Package mail provides a Controller that composes and delivers conversation notifications by email.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// DefaultSubject matches the subject historically used for conversation emails.
const DefaultSubject = "Your ElevenLabs Conversation Audio"

// Transport delivers a composed message.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, msg *gomail.Msg) error
}

// DeliveryError reports a failure to hand a notification over to the transport.
type DeliveryError struct {
	Transport string
	Cause     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver notification via %s: %v", e.Transport, e.Cause)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// Controller composes one email per notification, with exactly one attachment, and hands it to a Transport.
type Controller struct {
	logger    *slog.Logger
	from      string
	to        []string
	transport Transport
}

// NewController creates a mail Controller. A sender and a transport are required; recipients default to the sender.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.from == "" {
		return nil, errors.New("missing sender address")
	}
	if _inst.transport == nil {
		return nil, errors.New("missing mail transport")
	}
	if len(_inst.to) == 0 {
		_inst.to = []string{_inst.from}
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "mail", "transport", _inst.transport.Name())
	return _inst, nil
}

// Compose builds the MIME message for a notification.
func (c *Controller) Compose(notification models.NotificationMessage) (*gomail.Msg, error) {
	if notification.Attachment == nil {
		return nil, errors.New("notification has no attachment")
	}

	msg := gomail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return nil, errors.Wrap(err, "invalid sender address")
	}
	if err := msg.To(c.to...); err != nil {
		return nil, errors.Wrap(err, "invalid recipient address")
	}
	msg.Subject(notification.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, notification.BodyText)

	attachment := notification.Attachment
	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	if err := msg.AttachReader(attachment.Filename(), bytes.NewReader(attachment.Bytes),
		gomail.WithFileContentType(gomail.ContentType(contentType))); err != nil {
		return nil, errors.Wrap(err, "failed to attach recording")
	}
	return msg, nil
}

// Send composes and delivers a notification once. Failures are returned as *DeliveryError.
func (c *Controller) Send(ctx context.Context, notification models.NotificationMessage) error {
	msg, err := c.Compose(notification)
	if err != nil {
		return &DeliveryError{Transport: c.transport.Name(), Cause: err}
	}

	c.logger.Debug("delivering notification...", slog.Int("recipients", len(c.to)), slog.String("subject", notification.Subject))
	if err = c.transport.Deliver(ctx, msg); err != nil {
		return &DeliveryError{Transport: c.transport.Name(), Cause: err}
	}
	c.logger.Info("notification delivered", slog.Int("recipients", len(c.to)))
	return nil
}

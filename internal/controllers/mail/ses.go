package mail

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
)

// SESAPI is the subset of the SESv2 client used for delivery.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesTransport struct {
	client SESAPI
}

// NewSESTransport returns a Transport delivering the raw MIME message through Amazon SES.
func NewSESTransport(client SESAPI) (Transport, error) {
	if client == nil {
		return nil, errors.New("missing SES client")
	}
	return &sesTransport{client: client}, nil
}

func (t *sesTransport) Name() string {
	return "ses"
}

func (t *sesTransport) Deliver(ctx context.Context, msg *gomail.Msg) error {
	var raw bytes.Buffer
	if _, err := msg.WriteTo(&raw); err != nil {
		return errors.Wrap(err, "failed to render MIME message")
	}
	if _, err := t.client.SendEmail(ctx, &sesv2.SendEmailInput{
		Content: &types.EmailContent{
			Raw: &types.RawMessage{Data: raw.Bytes()},
		},
	}); err != nil {
		return errors.Wrap(err, "failed to send mail via SES")
	}
	return nil
}

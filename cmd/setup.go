package cmd

import (
	"context"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/isometry/convai-webhook/internal/controllers/aws"
	"github.com/isometry/convai-webhook/internal/controllers/elevenlabs"
	"github.com/isometry/convai-webhook/internal/controllers/mail"
	"github.com/isometry/convai-webhook/internal/handler"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/runtime"
	"github.com/isometry/convai-webhook/internal/validation"
	"github.com/pkg/errors"
)

// setup resolves secrets, validates the configuration and wires the webhook runtime.
func setup(ctx context.Context) (*runtime.Runtime, error) {
	config.Normalize()

	var awsCtl *aws.Controller
	awsController := func() (*aws.Controller, error) {
		if awsCtl != nil {
			return awsCtl, nil
		}
		logger.Debug("creating AWS controller...")
		ctl, err := aws.NewController(
			aws.WithContext(ctx),
			aws.WithArchive(config.Archive.Bucket, config.Archive.Prefix),
			aws.WithLogger(logger.With("component", "aws")))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
		awsCtl = ctl
		return awsCtl, nil
	}

	if config.Secrets.Source == config.SecretsFromSSM {
		ctl, err := awsController()
		if err != nil {
			return nil, err
		}
		logger.Debug("loading secrets from SSM...", "key", config.Secrets.SSMKey)
		doc, err := ctl.GetSecret(ctx, config.Secrets.SSMKey, true)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load secrets")
		}
		if err = config.ApplySecrets([]byte(doc)); err != nil {
			return nil, err
		}
		config.Normalize()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	logger.Debug("configuration loaded",
		"secretsSource", config.Secrets.Source,
		"webhookSecret", helpers.Redact(config.Webhook.Secret),
		"elevenlabsAPIKey", helpers.Redact(config.ElevenLabs.APIKey),
		"mailTransport", config.Mail.Transport,
		"mailFrom", config.Mail.From,
		"mailPassword", helpers.Redact(config.Mail.SMTP.Password))

	fetcher, err := elevenlabs.NewController(config.ElevenLabs.APIKey,
		elevenlabs.WithBaseURL(config.ElevenLabs.BaseURL),
		elevenlabs.WithTimeout(config.ElevenLabs.Timeout),
		elevenlabs.WithMaxBytes(config.ElevenLabs.MaxBytes),
		elevenlabs.WithLogger(logger.With("component", "elevenlabs")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ElevenLabs controller")
	}

	transport, err := newMailTransport(ctx, awsController)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mail transport")
	}
	dispatcher, err := mail.NewController(
		mail.WithFrom(config.Mail.From),
		mail.WithTo(config.Mail.To...),
		mail.WithTransport(transport),
		mail.WithLogger(logger.With("component", "mail")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create mail controller")
	}

	opts := []handler.Option{
		handler.WithVerifier(validation.NewVerifier(config.Webhook.Secret,
			validation.WithTolerance(config.Webhook.Tolerance),
			validation.WithMaxFutureSkew(config.Webhook.MaxFutureSkew))),
		handler.WithSignatureHeader(config.Webhook.Header),
		handler.WithAudioFetcher(fetcher),
		handler.WithDispatcher(dispatcher),
		handler.WithSubject(config.Mail.Subject),
		handler.WithLogger(logger.With("component", "webhook-handler")),
	}
	if config.Archive.Enabled {
		ctl, err := awsController()
		if err != nil {
			return nil, err
		}
		logger.Info("archiving conversations", "bucket", config.Archive.Bucket, "prefix", config.Archive.Prefix)
		opts = append(opts, handler.WithArchiver(ctl))
	}

	logger.Debug("creating webhook handler...")
	hdl, err := handler.NewWebhookHandler(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create webhook handler")
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithMaxBodyBytes(config.Service.MaxBodyBytes),
		runtime.WithRateLimit(config.Service.RateLimit.PerMinute, config.Service.RateLimit.Burst, 0, 0),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}

func newMailTransport(ctx context.Context, awsController func() (*aws.Controller, error)) (mail.Transport, error) {
	switch config.Mail.Transport {
	case "ses":
		ctl, err := awsController()
		if err != nil {
			return nil, err
		}
		return mail.NewSESTransport(ctl.SES())
	default:
		settings := mail.SMTPSettings{
			Host:      config.Mail.SMTP.Host,
			Port:      config.Mail.SMTP.Port,
			Username:  config.Mail.SMTP.Username,
			Password:  config.Mail.SMTP.Password,
			AuthMode:  config.Mail.SMTP.AuthMode,
			TLSPolicy: config.Mail.SMTP.TLS,
			Timeout:   config.Mail.SMTP.Timeout,
		}
		if settings.AuthMode == mail.AuthModeXOAuth2 {
			settings.TokenSource = mail.NewRefreshTokenSource(ctx,
				config.Mail.OAuth2.ClientID,
				config.Mail.OAuth2.ClientSecret,
				config.Mail.OAuth2.RefreshToken,
				config.Mail.OAuth2.TokenURL)
		}
		return mail.NewSMTPTransport(settings)
	}
}

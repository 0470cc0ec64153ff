package cmd

import (
	"time"

	"github.com/isometry/convai-webhook/internal/config"
	"github.com/isometry/convai-webhook/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Webhook.Secret: {
		Name:        "webhook-secret",
		Description: "The shared secret used to verify webhook signatures",
		Env:         helpers.Ptr("ELEVENLABS_WEBHOOK_SECRET"),
	},
	&config.Webhook.Header: {
		Name:        "webhook-signature-header",
		Description: "The request header carrying the webhook signature",
	},
	&config.ElevenLabs.APIKey: {
		Name:        "elevenlabs-api-key",
		Description: "The ElevenLabs API key used to fetch conversation audio",
		Env:         helpers.Ptr("ELEVENLABS_API_KEY"),
	},
	&config.ElevenLabs.BaseURL: {
		Name:        "elevenlabs-base-url",
		Description: "The ElevenLabs API base URL",
	},
	&config.Mail.Transport: {
		Name:        "mail-transport",
		Description: "The mail transport. Supported values are 'smtp' and 'ses'",
	},
	&config.Mail.From: {
		Name:        "mail-from",
		Description: "The sender address (default the SMTP username)",
		Env:         helpers.Ptr("EMAIL_FROM"),
	},
	&config.Mail.Subject: {
		Name:        "mail-subject",
		Description: "The notification subject",
	},
	&config.Mail.SMTP.Host: {
		Name:        "smtp-host",
		Description: "The SMTP relay host",
	},
	&config.Mail.SMTP.Username: {
		Name:        "smtp-username",
		Description: "The SMTP username",
		Env:         helpers.Ptr("EMAIL_USER"),
	},
	&config.Mail.SMTP.Password: {
		Name:        "smtp-password",
		Description: "The SMTP password",
		Env:         helpers.Ptr("EMAIL_PASS"),
	},
	&config.Mail.SMTP.AuthMode: {
		Name:        "smtp-auth-mode",
		Description: "The SMTP authentication mechanism. Supported values are 'none', 'plain', 'login' and 'xoauth2'",
	},
	&config.Mail.SMTP.TLS: {
		Name:        "smtp-tls",
		Description: "The SMTP TLS policy. Supported values are 'mandatory', 'opportunistic', 'ssl' and 'none'",
	},
	&config.Mail.OAuth2.ClientID: {
		Name:        "oauth2-client-id",
		Description: "The OAuth2 client id used for XOAUTH2",
	},
	&config.Mail.OAuth2.ClientSecret: {
		Name:        "oauth2-client-secret",
		Description: "The OAuth2 client secret used for XOAUTH2",
	},
	&config.Mail.OAuth2.RefreshToken: {
		Name:        "oauth2-refresh-token",
		Description: "The OAuth2 refresh token used for XOAUTH2",
	},
	&config.Mail.OAuth2.TokenURL: {
		Name:        "oauth2-token-url",
		Description: "The OAuth2 token endpoint",
	},
	&config.Secrets.Source: {
		Name:        "secrets-source",
		Description: "Where secrets are read from. Supported values are 'env' and 'ssm'",
	},
	&config.Secrets.SSMKey: {
		Name:        "secrets-ssm-key",
		Description: "The SSM parameter holding the secrets JSON document",
	},
	&config.Archive.Bucket: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket receiving archived conversations",
		Env:         helpers.Ptr("ARCHIVE_S3_BUCKET"),
	},
	&config.Archive.Prefix: {
		Name:        "archive-s3-prefix",
		Description: "The key prefix of archived conversations",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Archive.Enabled: {
		Name:        "archive-s3",
		Description: "Enable S3 archiving of processed conversations",
		Env:         helpers.Ptr("ARCHIVE_S3"),
	},
}

var envMapInt = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
		Count:       true,
	},
	&config.Mail.SMTP.Port: {
		Name:        "smtp-port",
		Description: "The SMTP relay port",
	},
}

var envMapInt64 = map[*int64]boundEnvVar[int64]{
	&config.ElevenLabs.MaxBytes: {
		Name:        "elevenlabs-max-bytes",
		Description: "The maximum size of a downloaded recording",
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Webhook.Tolerance: {
		Name:        "webhook-tolerance",
		Description: "The maximum age of a signed webhook request",
	},
	&config.Webhook.MaxFutureSkew: {
		Name:        "webhook-max-future-skew",
		Description: "How far in the future a signature timestamp may be (0 disables the check)",
	},
	&config.ElevenLabs.Timeout: {
		Name:        "elevenlabs-timeout",
		Description: "The timeout for audio downloads",
	},
	&config.Mail.SMTP.Timeout: {
		Name:        "smtp-timeout",
		Description: "The timeout for SMTP operations",
	},
}

var envMapStringSlice = map[*[]string]boundEnvVar[[]string]{
	&config.Mail.To: {
		Name:        "mail-to",
		Description: "The notification recipients (default the sender)",
		Env:         helpers.Ptr("EMAIL_TO"),
	},
}

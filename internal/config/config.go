// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

// Runtime modes.
const (
	ModeService = "service"
	ModeLambda  = "lambda"
)

// Secret sources.
const (
	SecretsFromEnv = "env"
	SecretsFromSSM = "ssm"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// Webhook is a struct that contains the configuration for signature verification.
	Webhook webhook
	// ElevenLabs is a struct that contains the configuration for the ElevenLabs API.
	ElevenLabs elevenLabs
	// Mail is a struct that contains the configuration for notification delivery.
	Mail mail
	// Secrets is a struct that contains the configuration for the secret source.
	Secrets secrets
	// Archive is a struct that contains the configuration for the S3 archive.
	Archive archive
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"lambda"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type webhook struct {
	Secret        string        `yaml:"secret,omitempty"`
	// Header is the request header carrying the signature.
	Header        string        `yaml:"header,omitempty" default:"elevenlabs-signature"`
	// Tolerance is the maximum age of a signed request.
	Tolerance     time.Duration `yaml:"tolerance,omitempty" default:"30m"`
	// MaxFutureSkew is how far ahead of the local clock a signature timestamp may be. Zero disables the check.
	MaxFutureSkew time.Duration `yaml:"maxFutureSkew,omitempty" default:"5m"`
}

type elevenLabs struct {
	APIKey   string        `yaml:"apiKey,omitempty"`
	BaseURL  string        `yaml:"baseURL,omitempty" default:"https://api.elevenlabs.io"`
	Timeout  time.Duration `yaml:"timeout,omitempty" default:"30s"`
	MaxBytes int64         `yaml:"maxBytes,omitempty" default:"52428800"`
}

type mail struct {
	// Transport is either 'smtp' or 'ses'.
	Transport string   `yaml:"transport,omitempty" default:"smtp"`
	From      string   `yaml:"from,omitempty"`
	To        []string `yaml:"to,omitempty"`
	Subject   string   `yaml:"subject,omitempty" default:"Your ElevenLabs Conversation Audio"`
	SMTP      struct {
		Host     string        `yaml:"host,omitempty" default:"smtp.gmail.com"`
		Port     int           `yaml:"port,omitempty" default:"587"`
		Username string        `yaml:"username,omitempty"`
		Password string        `yaml:"password,omitempty"`
		// AuthMode is one of 'none', 'plain', 'login' or 'xoauth2'.
		AuthMode string        `yaml:"authMode,omitempty" default:"plain"`
		// TLS is one of 'mandatory', 'opportunistic', 'ssl' or 'none'.
		TLS      string        `yaml:"tls,omitempty" default:"mandatory"`
		Timeout  time.Duration `yaml:"timeout,omitempty" default:"30s"`
	} `yaml:"smtp,omitempty"`
	OAuth2 struct {
		ClientID     string `yaml:"clientID,omitempty"`
		ClientSecret string `yaml:"clientSecret,omitempty"`
		RefreshToken string `yaml:"refreshToken,omitempty"`
		TokenURL     string `yaml:"tokenURL,omitempty" default:"https://oauth2.googleapis.com/token"`
	} `yaml:"oauth2,omitempty"`
}

type secrets struct {
	// Source is either 'env' (flags, environment and config file) or 'ssm'.
	Source string `yaml:"source,omitempty" default:"env"`
	// SSMKey names a SecureString parameter holding a JSON document of secrets.
	SSMKey string `yaml:"ssmKey,omitempty"`
}

type archive struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Bucket  string `yaml:"bucket,omitempty"`
	Prefix  string `yaml:"prefix,omitempty" default:"conversations"`
}

type service struct {
	Path         string        `yaml:"path,omitempty" default:"/"`
	Addr         string        `yaml:"addr,omitempty"`
	Port         string        `yaml:"port,omitempty" default:"8080"`
	Timeout      time.Duration `yaml:"timeout,omitempty" default:"90s"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes,omitempty" default:"10485760"`
	RateLimit    struct {
		// PerMinute is the sustained number of requests allowed per client. Zero disables rate limiting.
		PerMinute int `yaml:"perMinute,omitempty"`
		Burst     int `yaml:"burst,omitempty"`
	} `yaml:"rateLimit,omitempty"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

// SecretDocument is the JSON layout of the SSM parameter used when Secrets.Source is 'ssm'.
type SecretDocument struct {
	WebhookSecret      string `json:"webhook_secret,omitempty"`
	ElevenLabsAPIKey   string `json:"elevenlabs_api_key,omitempty"`
	MailPassword       string `json:"mail_password,omitempty"`
	OAuth2ClientSecret string `json:"oauth2_client_secret,omitempty"`
	OAuth2RefreshToken string `json:"oauth2_refresh_token,omitempty"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&Webhook),
		defaults.Set(&ElevenLabs),
		defaults.Set(&Mail),
		defaults.Set(&Secrets),
		defaults.Set(&Archive),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	type all struct {
		Global     global     `yaml:"global,omitempty"`
		Webhook    webhook    `yaml:"webhook,omitempty"`
		ElevenLabs elevenLabs `yaml:"elevenlabs,omitempty"`
		Mail       mail       `yaml:"mail,omitempty"`
		Secrets    secrets    `yaml:"secrets,omitempty"`
		Archive    archive    `yaml:"archive,omitempty"`
		Service    service    `yaml:"service,omitempty"`
		Lambda     lambda     `yaml:"lambda,omitempty"`
	}
	var a all
	if err = yaml.Unmarshal(content, &a); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	Global = a.Global
	Webhook = a.Webhook
	ElevenLabs = a.ElevenLabs
	Mail = a.Mail
	Secrets = a.Secrets
	Archive = a.Archive
	Service = a.Service
	Lambda = a.Lambda

	return nil
}

// ApplySecrets overlays the non-empty values of a JSON secret document onto the configuration.
func ApplySecrets(raw []byte) error {
	var doc SecretDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal secret document: %w", err)
	}
	for dst, v := range map[*string]string{
		&Webhook.Secret:           doc.WebhookSecret,
		&ElevenLabs.APIKey:        doc.ElevenLabsAPIKey,
		&Mail.SMTP.Password:       doc.MailPassword,
		&Mail.OAuth2.ClientSecret: doc.OAuth2ClientSecret,
		&Mail.OAuth2.RefreshToken: doc.OAuth2RefreshToken,
	} {
		if v != "" {
			*dst = v
		}
	}
	return nil
}

// Normalize trims free-form values and derives the mail addresses: the sender defaults to the SMTP
// username and the recipients default to the sender.
func Normalize() {
	Global.Mode = strings.TrimSpace(Global.Mode)
	Mail.Transport = strings.ToLower(strings.TrimSpace(Mail.Transport))
	Mail.SMTP.AuthMode = strings.ToLower(strings.TrimSpace(Mail.SMTP.AuthMode))
	Mail.SMTP.TLS = strings.ToLower(strings.TrimSpace(Mail.SMTP.TLS))
	if Mail.From == "" {
		Mail.From = Mail.SMTP.Username
	}
	Mail.To = slices.DeleteFunc(Mail.To, func(s string) bool { return strings.TrimSpace(s) == "" })
	if len(Mail.To) == 0 && Mail.From != "" {
		Mail.To = []string{Mail.From}
	}
}

// Validate reports every missing or inconsistent setting at once.
func Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(Global.Mode == ModeService || Global.Mode == ModeLambda, "invalid mode: %q", Global.Mode)
	check(Webhook.Secret != "", "webhook secret is required")
	check(Webhook.Tolerance > 0, "webhook tolerance must be positive")
	check(Webhook.MaxFutureSkew >= 0, "webhook max future skew must not be negative")
	check(ElevenLabs.APIKey != "", "elevenlabs api key is required")
	check(Mail.From != "", "mail sender is required")

	switch Mail.Transport {
	case "ses":
	case "smtp":
		check(Mail.SMTP.Host != "", "smtp host is required")
		check(Mail.SMTP.Port > 0, "smtp port must be positive")
		check(slices.Contains([]string{"mandatory", "opportunistic", "ssl", "none"}, Mail.SMTP.TLS), "invalid smtp tls policy: %q", Mail.SMTP.TLS)
		switch Mail.SMTP.AuthMode {
		case "none":
		case "plain", "login":
			check(Mail.SMTP.Username != "" && Mail.SMTP.Password != "", "smtp %s auth requires username and password", Mail.SMTP.AuthMode)
		case "xoauth2":
			check(Mail.SMTP.Username != "", "smtp xoauth2 auth requires a username")
			check(Mail.OAuth2.ClientID != "" && Mail.OAuth2.ClientSecret != "" && Mail.OAuth2.RefreshToken != "",
				"smtp xoauth2 auth requires oauth2 client id, client secret and refresh token")
		default:
			check(false, "invalid smtp auth mode: %q", Mail.SMTP.AuthMode)
		}
	default:
		check(false, "invalid mail transport: %q", Mail.Transport)
	}

	check(Secrets.Source == SecretsFromEnv || Secrets.Source == SecretsFromSSM, "invalid secrets source: %q", Secrets.Source)
	check(!Archive.Enabled || Archive.Bucket != "", "archive bucket is required when archiving is enabled")
	if Global.Mode == ModeLambda {
		check(slices.Contains([]string{"api-gateway-v1", "api-gateway-v2", "lambda-url"}, Lambda.PayloadType),
			"invalid lambda payload type: %q", Lambda.PayloadType)
	}

	return errors.Join(errs...)
}

package mail

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	gomail "github.com/wneessen/go-mail"
	"golang.org/x/oauth2"
)

const (
	AuthModeNone    = "none"
	AuthModePlain   = "plain"
	AuthModeLogin   = "login"
	AuthModeXOAuth2 = "xoauth2"

	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSImplicit      = "ssl"
	TLSNone          = "none"
)

// SMTPSettings describes how to reach and authenticate with an SMTP relay.
type SMTPSettings struct {
	Host      string
	Port      int
	Username  string
	Password  string
	AuthMode  string
	TLSPolicy string
	Timeout   time.Duration
	// TokenSource supplies access tokens when AuthMode is xoauth2.
	TokenSource oauth2.TokenSource
}

type smtpTransport struct {
	settings SMTPSettings
}

// NewSMTPTransport returns a Transport delivering through an SMTP relay.
// A fresh client is dialled per delivery so concurrent requests never share connection state.
func NewSMTPTransport(settings SMTPSettings) (Transport, error) {
	if settings.Host == "" {
		return nil, errors.New("missing SMTP host")
	}
	settings.AuthMode = strings.ToLower(strings.TrimSpace(settings.AuthMode))
	settings.TLSPolicy = strings.ToLower(strings.TrimSpace(settings.TLSPolicy))
	switch settings.AuthMode {
	case AuthModeNone, AuthModePlain, AuthModeLogin:
	case AuthModeXOAuth2:
		if settings.TokenSource == nil {
			return nil, errors.New("xoauth2 requires an OAuth2 token source")
		}
	default:
		return nil, errors.Errorf("unsupported SMTP auth mode: %s", settings.AuthMode)
	}
	switch settings.TLSPolicy {
	case TLSMandatory, TLSOpportunistic, TLSImplicit, TLSNone:
	default:
		return nil, errors.Errorf("unsupported SMTP TLS policy: %s", settings.TLSPolicy)
	}
	return &smtpTransport{settings: settings}, nil
}

func (t *smtpTransport) Name() string {
	return "smtp"
}

func (t *smtpTransport) clientOptions() ([]gomail.Option, error) {
	s := t.settings
	opts := []gomail.Option{}
	if s.Port > 0 {
		opts = append(opts, gomail.WithPort(s.Port))
	}
	if s.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.Timeout))
	}

	switch s.TLSPolicy {
	case TLSMandatory:
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	case TLSOpportunistic:
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	case TLSImplicit:
		opts = append(opts, gomail.WithSSL())
	case TLSNone:
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	}

	switch s.AuthMode {
	case AuthModePlain:
		opts = append(opts, gomail.WithSMTPAuth(gomail.SMTPAuthPlain), gomail.WithUsername(s.Username), gomail.WithPassword(s.Password))
	case AuthModeLogin:
		opts = append(opts, gomail.WithSMTPAuth(gomail.SMTPAuthLogin), gomail.WithUsername(s.Username), gomail.WithPassword(s.Password))
	case AuthModeXOAuth2:
		token, err := s.TokenSource.Token()
		if err != nil {
			return nil, errors.Wrap(err, "failed to obtain OAuth2 access token")
		}
		opts = append(opts, gomail.WithSMTPAuth(gomail.SMTPAuthXOAUTH2), gomail.WithUsername(s.Username), gomail.WithPassword(token.AccessToken))
	}
	return opts, nil
}

func (t *smtpTransport) Deliver(ctx context.Context, msg *gomail.Msg) error {
	opts, err := t.clientOptions()
	if err != nil {
		return err
	}
	client, err := gomail.NewClient(t.settings.Host, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create SMTP client")
	}
	if err = client.DialAndSendWithContext(ctx, msg); err != nil {
		return errors.Wrap(err, "failed to send mail")
	}
	return nil
}

// NewRefreshTokenSource returns a caching TokenSource that exchanges a long-lived refresh token for access tokens.
func NewRefreshTokenSource(ctx context.Context, clientID, clientSecret, refreshToken, tokenURL string) oauth2.TokenSource {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

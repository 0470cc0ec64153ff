// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultHeader is the header carrying the webhook signature.
	DefaultHeader = "elevenlabs-signature"
	// DefaultTolerance is the replay window: older timestamps are rejected.
	DefaultTolerance = 30 * time.Minute
	// DefaultMaxFutureSkew bounds how far ahead of the local clock a timestamp may be.
	DefaultMaxFutureSkew = 5 * time.Minute

	timestampKey = "t"
	digestKey    = "v0"
)

var (
	ErrMissingSecret      = errors.New("missing webhook secret")
	ErrMissingSignature   = errors.New("missing signature header")
	ErrMalformedSignature = errors.New("malformed signature header")
	ErrExpired            = errors.New("signature timestamp expired")
	ErrTimestampInFuture  = errors.New("signature timestamp in the future")
	ErrInvalidSignature   = errors.New("invalid signature")
)

// Signature is a parsed signature header.
type Signature struct {
	Timestamp int64
	Digest    string
}

// ParseSignature parses a "t=<unix-seconds>,v0=<hex>" header. Token order is not significant.
// A header missing either token, or carrying a malformed value, is rejected.
func ParseSignature(header string) (*Signature, error) {
	if strings.TrimSpace(header) == "" {
		return nil, ErrMissingSignature
	}

	var (
		sig                Signature
		hasTime, hasDigest bool
	)
	for _, token := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(token), "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case timestampKey:
			if hasTime {
				continue
			}
			ts, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedSignature, "timestamp %q", value)
			}
			sig.Timestamp, hasTime = ts, true
		case digestKey:
			if hasDigest {
				continue
			}
			digest := strings.ToLower(strings.TrimSpace(value))
			if len(digest) != hex.EncodedLen(sha256.Size) {
				return nil, errors.Wrap(ErrMalformedSignature, "digest length")
			}
			if _, err := hex.DecodeString(digest); err != nil {
				return nil, errors.Wrap(ErrMalformedSignature, "digest encoding")
			}
			sig.Digest, hasDigest = digest, true
		}
	}

	if !hasTime {
		return nil, errors.Wrap(ErrMalformedSignature, "missing t= token")
	}
	if !hasDigest {
		return nil, errors.Wrap(ErrMalformedSignature, "missing v0= token")
	}
	return &sig, nil
}

// WebhookSecret represents the secret shared with the platform to sign webhook deliveries.
type WebhookSecret string

// ComputeDigest returns the hex encoded HMAC-SHA256 of "<timestamp>.<body>".
func (s WebhookSecret) ComputeDigest(timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(s))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign produces a signature header value for the body at the given timestamp.
func (s WebhookSecret) Sign(body []byte, timestamp int64) string {
	return fmt.Sprintf("%s=%d,%s=%s", timestampKey, timestamp, digestKey, s.ComputeDigest(timestamp, body))
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithTolerance sets the replay window.
func WithTolerance(d time.Duration) Option {
	return func(v *Verifier) {
		v.tolerance = d
	}
}

// WithMaxFutureSkew sets the accepted clock skew for timestamps ahead of now. Zero disables the check.
func WithMaxFutureSkew(d time.Duration) Option {
	return func(v *Verifier) {
		v.maxFutureSkew = d
	}
}

// Verifier checks webhook signatures against the shared secret.
type Verifier struct {
	secret        WebhookSecret
	tolerance     time.Duration
	maxFutureSkew time.Duration
}

// NewVerifier creates a Verifier for the given secret.
func NewVerifier(secret string, opts ...Option) *Verifier {
	_inst := &Verifier{
		secret:        WebhookSecret(secret),
		tolerance:     DefaultTolerance,
		maxFutureSkew: DefaultMaxFutureSkew,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	return _inst
}

// Verify authenticates the raw body against the signature header at the instant now.
// It only ever looks at the bytes and the header, never at the decoded payload.
func (v *Verifier) Verify(body []byte, header string, now time.Time) error {
	if v == nil || v.secret == "" {
		return ErrMissingSecret
	}

	sig, err := ParseSignature(header)
	if err != nil {
		return err
	}

	signedAtMs := sig.Timestamp * 1000
	if signedAtMs < now.UnixMilli()-v.tolerance.Milliseconds() {
		return errors.Wrapf(ErrExpired, "signed at %d", sig.Timestamp)
	}
	if v.maxFutureSkew > 0 && signedAtMs > now.UnixMilli()+v.maxFutureSkew.Milliseconds() {
		return errors.Wrapf(ErrTimestampInFuture, "signed at %d", sig.Timestamp)
	}

	expected, _ := hex.DecodeString(v.secret.ComputeDigest(sig.Timestamp, body))
	received, _ := hex.DecodeString(sig.Digest)
	if !hmac.Equal(expected, received) {
		return ErrInvalidSignature
	}
	return nil
}

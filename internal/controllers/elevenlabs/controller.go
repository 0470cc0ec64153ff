// Package elevenlabs provides a Controller for retrieving conversation recordings from the ElevenLabs API.
package elevenlabs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the public ElevenLabs API endpoint.
	DefaultBaseURL = "https://api.elevenlabs.io"
	// APIKeyHeader carries the API key on every request.
	APIKeyHeader = "xi-api-key"
	// DefaultTimeout bounds a single audio download.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBytes caps the size of a downloaded recording.
	DefaultMaxBytes int64 = 50 << 20

	audioContentType = "audio/mpeg"
)

var errMissingAPIKey = errors.New("missing ElevenLabs API key")

// UpstreamError is returned when the API answers with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("audio API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("audio API returned status %d: %s", e.StatusCode, e.Body)
}

// FetchError wraps transport level failures: timeouts, DNS, truncated bodies.
type FetchError struct {
	ConversationID string
	Cause          error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch audio for conversation %s: %v", e.ConversationID, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// Controller retrieves conversation audio from the ElevenLabs API.
type Controller struct {
	logger   *slog.Logger
	client   *http.Client
	baseURL  string
	apiKey   string
	timeout  time.Duration
	maxBytes int64
}

// NewController creates a Controller authenticating with the given API key.
func NewController(apiKey string, opts ...Option) (*Controller, error) {
	_inst := &Controller{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		timeout:  DefaultTimeout,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.apiKey == "" {
		return nil, errMissingAPIKey
	}
	if _, err := url.Parse(_inst.baseURL); err != nil {
		return nil, errors.Wrap(err, "invalid ElevenLabs base URL")
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.client == nil {
		_inst.client = &http.Client{}
	}
	_inst.logger = _inst.logger.With("controller", "elevenlabs")
	return _inst, nil
}

func (c *Controller) audioURL(conversationID string) string {
	return fmt.Sprintf("%s/v1/convai/conversations/%s/audio", strings.TrimRight(c.baseURL, "/"), url.PathEscape(conversationID))
}

// FetchAudio downloads the recording of a conversation with a single GET. It never retries.
func (c *Controller) FetchAudio(ctx context.Context, conversationID string) (*models.AudioAsset, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.audioURL(conversationID), nil)
	if err != nil {
		return nil, &FetchError{ConversationID: conversationID, Cause: err}
	}
	req.Header.Set(APIKeyHeader, c.apiKey)

	logger := c.logger.With("conversationId", conversationID)
	logger.Debug("fetching conversation audio...")
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{ConversationID: conversationID, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: helpers.Truncate(strings.TrimSpace(string(snippet)), 256)}
	}

	reader := io.Reader(resp.Body)
	if c.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	audio, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{ConversationID: conversationID, Cause: err}
	}
	if c.maxBytes > 0 && int64(len(audio)) > c.maxBytes {
		return nil, &FetchError{ConversationID: conversationID, Cause: fmt.Errorf("recording exceeds %d bytes", c.maxBytes)}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = audioContentType
	}
	logger.Info("fetched conversation audio", slog.Int("bytes", len(audio)), slog.Duration("elapsed", time.Since(start)))
	return &models.AudioAsset{
		ConversationID: conversationID,
		Bytes:          audio,
		ContentType:    contentType,
	}, nil
}

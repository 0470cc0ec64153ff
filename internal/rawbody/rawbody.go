// Package rawbody provides access to the exact bytes of a webhook request body.
//
// Signatures are computed over the bytes as transmitted, so a Source never
// trims, re-encodes or otherwise normalises the payload.
package rawbody

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	// DefaultMaxBytes caps the size of a request body.
	DefaultMaxBytes int64 = 10 << 20

	chunkSize = 32 << 10
)

// Source yields the unparsed request body.
type Source interface {
	Bytes(ctx context.Context) ([]byte, error)
}

// ReadError reports a failure to obtain the request body.
type ReadError struct {
	Cause error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read request body: %v", e.Cause)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// Option configures a streamed Source.
type Option func(*stream)

// WithMaxBytes limits the number of bytes a streamed Source accepts. A non-positive value disables the limit.
func WithMaxBytes(n int64) Option {
	return func(s *stream) {
		s.maxBytes = n
	}
}

type stream struct {
	r        io.Reader
	maxBytes int64
}

// FromStream returns a Source that concatenates the reader chunk by chunk until EOF.
func FromStream(r io.Reader, opts ...Option) Source {
	_inst := &stream{r: r, maxBytes: DefaultMaxBytes}
	for _, opt := range opts {
		opt(_inst)
	}
	return _inst
}

func (s *stream) Bytes(ctx context.Context) ([]byte, error) {
	if s.r == nil {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, &ReadError{Cause: err}
		}
		n, err := s.r.Read(chunk)
		if n > 0 {
			if s.maxBytes > 0 && int64(buf.Len()+n) > s.maxBytes {
				return nil, &ReadError{Cause: fmt.Errorf("body exceeds %d bytes", s.maxBytes)}
			}
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return nil, &ReadError{Cause: err}
		}
	}
}

type buffered struct {
	body          string
	base64Encoded bool
}

// FromBuffer returns a Source over a body the hosting runtime has already buffered.
// Bodies flagged as base64 encoded are decoded back to their transmitted bytes.
func FromBuffer(body string, base64Encoded bool) Source {
	return &buffered{body: body, base64Encoded: base64Encoded}
}

func (b *buffered) Bytes(_ context.Context) ([]byte, error) {
	if !b.base64Encoded {
		return []byte(b.body), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(b.body)
	if err != nil {
		return nil, &ReadError{Cause: err}
	}
	return decoded, nil
}

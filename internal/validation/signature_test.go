package validation_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/isometry/convai-webhook/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "wsec_test"
	testBody   = `{"type":"post_call_transcription","data":{"conversation_id":"conv_123"}}`
)

var testNow = time.Unix(1_750_000_000, 0)

func TestParseSignature(t *testing.T) {
	digest := strings.Repeat("ab", 32)
	testCases := []struct {
		Name        string
		Header      string
		Expected    *validation.Signature
		ExpectedErr error
	}{
		{
			Name:     "canonical_order",
			Header:   fmt.Sprintf("t=1700000000,v0=%s", digest),
			Expected: &validation.Signature{Timestamp: 1700000000, Digest: digest},
		},
		{
			Name:     "reversed_order",
			Header:   fmt.Sprintf("v0=%s,t=1700000000", digest),
			Expected: &validation.Signature{Timestamp: 1700000000, Digest: digest},
		},
		{
			Name:     "whitespace_and_unknown_tokens",
			Header:   fmt.Sprintf(" t=1700000000 , v1=ignored, v0=%s ", strings.ToUpper(digest)),
			Expected: &validation.Signature{Timestamp: 1700000000, Digest: digest},
		},
		{
			Name:        "empty",
			Header:      "",
			ExpectedErr: validation.ErrMissingSignature,
		},
		{
			Name:        "missing_timestamp",
			Header:      "v0=" + digest,
			ExpectedErr: validation.ErrMalformedSignature,
		},
		{
			Name:        "missing_digest",
			Header:      "t=1700000000",
			ExpectedErr: validation.ErrMalformedSignature,
		},
		{
			Name:        "non_numeric_timestamp",
			Header:      "t=yesterday,v0=" + digest,
			ExpectedErr: validation.ErrMalformedSignature,
		},
		{
			Name:        "non_hex_digest",
			Header:      "t=1700000000,v0=" + strings.Repeat("zz", 32),
			ExpectedErr: validation.ErrMalformedSignature,
		},
		{
			Name:        "short_digest",
			Header:      "t=1700000000,v0=abcd",
			ExpectedErr: validation.ErrMalformedSignature,
		},
		{
			Name:        "garbage",
			Header:      "sha256=" + digest,
			ExpectedErr: validation.ErrMalformedSignature,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			sig, err := validation.ParseSignature(tc.Header)
			if tc.ExpectedErr != nil {
				assert.ErrorIs(t, err, tc.ExpectedErr)
				assert.Nil(t, sig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, sig)
		})
	}
}

func TestVerifier_Verify(t *testing.T) {
	secret := validation.WebhookSecret(testSecret)
	fresh := testNow.Unix()

	testCases := []struct {
		Name        string
		Secret      string
		Body        string
		Header      string
		Opts        []validation.Option
		ExpectedErr error
	}{
		{
			Name:   "valid",
			Secret: testSecret,
			Body:   testBody,
			Header: secret.Sign([]byte(testBody), fresh),
		},
		{
			Name:   "valid_at_window_edge",
			Secret: testSecret,
			Body:   testBody,
			Header: secret.Sign([]byte(testBody), fresh-int64(validation.DefaultTolerance/time.Second)),
		},
		{
			Name:   "valid_empty_body",
			Secret: testSecret,
			Body:   "",
			Header: secret.Sign(nil, fresh),
		},
		{
			Name:        "missing_secret",
			Secret:      "",
			Body:        testBody,
			Header:      secret.Sign([]byte(testBody), fresh),
			ExpectedErr: validation.ErrMissingSecret,
		},
		{
			Name:        "missing_header",
			Secret:      testSecret,
			Body:        testBody,
			ExpectedErr: validation.ErrMissingSignature,
		},
		{
			Name:        "wrong_secret",
			Secret:      "another-secret",
			Body:        testBody,
			Header:      secret.Sign([]byte(testBody), fresh),
			ExpectedErr: validation.ErrInvalidSignature,
		},
		{
			Name:        "timestamp_swapped",
			Secret:      testSecret,
			Body:        testBody,
			Header:      fmt.Sprintf("t=%d,v0=%s", fresh-1, secret.ComputeDigest(fresh, []byte(testBody))),
			ExpectedErr: validation.ErrInvalidSignature,
		},
		{
			Name:        "re_serialized_body",
			Secret:      testSecret,
			Body:        strings.ReplaceAll(testBody, ":", ": "),
			Header:      secret.Sign([]byte(testBody), fresh),
			ExpectedErr: validation.ErrInvalidSignature,
		},
		{
			Name:        "expired",
			Secret:      testSecret,
			Body:        testBody,
			Header:      secret.Sign([]byte(testBody), fresh-int64(validation.DefaultTolerance/time.Second)-1),
			ExpectedErr: validation.ErrExpired,
		},
		{
			Name:        "expired_custom_tolerance",
			Secret:      testSecret,
			Body:        testBody,
			Header:      secret.Sign([]byte(testBody), fresh-120),
			Opts:        []validation.Option{validation.WithTolerance(time.Minute)},
			ExpectedErr: validation.ErrExpired,
		},
		{
			Name:        "future",
			Secret:      testSecret,
			Body:        testBody,
			Header:      secret.Sign([]byte(testBody), fresh+int64(validation.DefaultMaxFutureSkew/time.Second)+1),
			ExpectedErr: validation.ErrTimestampInFuture,
		},
		{
			Name:   "future_check_disabled",
			Secret: testSecret,
			Body:   testBody,
			Header: secret.Sign([]byte(testBody), fresh+86400),
			Opts:   []validation.Option{validation.WithMaxFutureSkew(0)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			v := validation.NewVerifier(tc.Secret, tc.Opts...)
			err := v.Verify([]byte(tc.Body), tc.Header, testNow)
			if tc.ExpectedErr != nil {
				assert.ErrorIs(t, err, tc.ExpectedErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerifier_VerifyRejectsAnySingleByteMutation(t *testing.T) {
	secret := validation.WebhookSecret(testSecret)
	header := secret.Sign([]byte(testBody), testNow.Unix())
	v := validation.NewVerifier(testSecret)

	require.NoError(t, v.Verify([]byte(testBody), header, testNow))
	for i := range len(testBody) {
		mutated := []byte(testBody)
		mutated[i] ^= 0x01
		assert.ErrorIs(t, v.Verify(mutated, header, testNow), validation.ErrInvalidSignature, "mutation at byte %d", i)
	}
}

func TestVerifier_VerifyExpiredRegardlessOfDigest(t *testing.T) {
	secret := validation.WebhookSecret(testSecret)
	v := validation.NewVerifier(testSecret)

	for _, age := range []time.Duration{validation.DefaultTolerance + time.Second, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
		ts := testNow.Add(-age).Unix()
		valid := secret.Sign([]byte(testBody), ts)
		forged := fmt.Sprintf("t=%d,v0=%s", ts, strings.Repeat("0", 64))

		assert.ErrorIs(t, v.Verify([]byte(testBody), valid, testNow), validation.ErrExpired, "age %s", age)
		assert.ErrorIs(t, v.Verify([]byte(testBody), forged, testNow), validation.ErrExpired, "age %s", age)
	}
}

func TestVerifier_VerifyMalformedIndependentOfBody(t *testing.T) {
	v := validation.NewVerifier(testSecret)
	headers := []string{
		"t=1750000000",
		"v0=" + strings.Repeat("0", 64),
		"t=,v0=",
		"foo=bar",
	}
	bodies := []string{"", testBody, "not json at all"}

	for _, header := range headers {
		for _, body := range bodies {
			assert.ErrorIs(t, v.Verify([]byte(body), header, testNow), validation.ErrMalformedSignature, "header %q body %q", header, body)
		}
	}
}

func TestWebhookSecret_ComputeDigest(t *testing.T) {
	secret := validation.WebhookSecret("secret")
	digest := secret.ComputeDigest(1700000000, []byte("{}"))

	assert.Len(t, digest, 64)
	assert.Equal(t, digest, secret.ComputeDigest(1700000000, []byte("{}")))
	assert.NotEqual(t, digest, secret.ComputeDigest(1700000001, []byte("{}")))
	assert.Equal(t, fmt.Sprintf("t=1700000000,v0=%s", digest), secret.Sign([]byte("{}"), 1700000000))
}

package conversation_test

import (
	"testing"

	"github.com/isometry/convai-webhook/internal/conversation"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPayload = `{
  "type": "post_call_transcription",
  "event_timestamp": 1739537297,
  "data": {
    "agent_id": "agent_xyz",
    "conversation_id": "conv_abc",
    "status": "done",
    "transcript": [
      {"role": "agent", "message": "Hello, how can I help?", "time_in_call_secs": 0},
      {"role": "user", "message": "I need a refund.", "time_in_call_secs": 2}
    ],
    "metadata": {"start_time_unix_secs": 1739537297, "call_duration_secs": 22},
    "analysis": {"transcript_summary": "Customer asked for a refund.", "call_successful": "success"}
  }
}`

func TestParse(t *testing.T) {
	testCases := []struct {
		Name        string
		Input       string
		Expected    *models.WebhookEvent
		ExpectedErr error
	}{
		{
			Name:  "full_payload",
			Input: fullPayload,
			Expected: &models.WebhookEvent{
				Type:           conversation.EventTypePostCallTranscription,
				EventTimestamp: 1739537297,
				ConversationID: "conv_abc",
				AgentID:        "agent_xyz",
				Status:         "done",
				Transcript: []models.Turn{
					{Role: "agent", Message: "Hello, how can I help?"},
					{Role: "user", Message: "I need a refund."},
				},
				Summary:             helpers.Ptr("Customer asked for a refund."),
				CallSuccessful:      helpers.Ptr("success"),
				CallDurationSeconds: helpers.Ptr(22.0),
				StartTimeUnix:       helpers.Ptr(int64(1739537297)),
			},
		},
		{
			Name:  "minimal_payload",
			Input: `{"type":"post_call_transcription","data":{"conversation_id":"conv_min"}}`,
			Expected: &models.WebhookEvent{
				Type:           conversation.EventTypePostCallTranscription,
				ConversationID: "conv_min",
			},
		},
		{
			Name:  "null_message",
			Input: `{"type":"post_call_transcription","data":{"conversation_id":"c","transcript":[{"role":"agent","message":null}]}}`,
			Expected: &models.WebhookEvent{
				Type:           conversation.EventTypePostCallTranscription,
				ConversationID: "c",
				Transcript:     []models.Turn{{Role: "agent"}},
			},
		},
		{
			Name:        "empty_body",
			Input:       "  ",
			ExpectedErr: conversation.ErrMalformedPayload,
		},
		{
			Name:        "invalid_json",
			Input:       `{"type": "post_call_transcription",`,
			ExpectedErr: conversation.ErrMalformedPayload,
		},
		{
			Name:        "not_an_object",
			Input:       `["post_call_transcription"]`,
			ExpectedErr: conversation.ErrMalformedPayload,
		},
		{
			Name:        "missing_type",
			Input:       `{"data":{"conversation_id":"conv_abc"}}`,
			ExpectedErr: conversation.ErrUnsupportedEventType,
		},
		{
			Name:        "other_type",
			Input:       `{"type":"post_call_audio","data":{"conversation_id":"conv_abc"}}`,
			ExpectedErr: conversation.ErrUnsupportedEventType,
		},
		{
			Name:        "missing_data",
			Input:       `{"type":"post_call_transcription"}`,
			ExpectedErr: conversation.ErrMissingConversationID,
		},
		{
			Name:        "empty_conversation_id",
			Input:       `{"type":"post_call_transcription","data":{"conversation_id":""}}`,
			ExpectedErr: conversation.ErrMissingConversationID,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			event, err := conversation.Parse([]byte(tc.Input))
			if tc.ExpectedErr != nil {
				assert.ErrorIs(t, err, tc.ExpectedErr)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, event)
		})
	}
}

package conversation_test

import (
	"testing"

	"github.com/isometry/convai-webhook/internal/conversation"
	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatTranscript(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    []models.Turn
		Expected string
	}{
		{
			Name:     "nil",
			Input:    nil,
			Expected: conversation.NoTranscript,
		},
		{
			Name:     "empty",
			Input:    []models.Turn{},
			Expected: conversation.NoTranscript,
		},
		{
			Name:     "single_turn",
			Input:    []models.Turn{{Role: "agent", Message: "Hi!"}},
			Expected: "Transcript:\n\nAGENT: Hi!",
		},
		{
			Name: "two_turns",
			Input: []models.Turn{
				{Role: "agent", Message: "Hello, how can I help?"},
				{Role: "user", Message: "I need a refund."},
			},
			Expected: "Transcript:\n\nAGENT: Hello, how can I help?\n\nUSER: I need a refund.",
		},
		{
			Name:     "empty_message_kept",
			Input:    []models.Turn{{Role: "User", Message: ""}},
			Expected: "Transcript:\n\nUSER: ",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Expected, conversation.FormatTranscript(tc.Input))
		})
	}
}

func TestFormatTranscriptIsDeterministic(t *testing.T) {
	turns := []models.Turn{
		{Role: "agent", Message: "one"},
		{Role: "user", Message: "two"},
		{Role: "agent", Message: "three"},
	}
	first := conversation.FormatTranscript(turns)
	for range 10 {
		assert.Equal(t, first, conversation.FormatTranscript(turns))
	}
	assert.Equal(t, "one", turns[0].Message, "input must not be modified")
}

func TestSummaryAndDuration(t *testing.T) {
	testCases := []struct {
		Name             string
		Event            *models.WebhookEvent
		ExpectedSummary  string
		ExpectedDuration string
	}{
		{
			Name:             "absent",
			Event:            &models.WebhookEvent{},
			ExpectedSummary:  conversation.NoSummary,
			ExpectedDuration: conversation.NoDuration,
		},
		{
			Name:             "blank_summary",
			Event:            &models.WebhookEvent{Summary: helpers.Ptr("  ")},
			ExpectedSummary:  conversation.NoSummary,
			ExpectedDuration: conversation.NoDuration,
		},
		{
			Name: "present",
			Event: &models.WebhookEvent{
				Summary:             helpers.Ptr("Refund requested."),
				CallDurationSeconds: helpers.Ptr(22.5),
			},
			ExpectedSummary:  "Refund requested.",
			ExpectedDuration: "22.5 seconds",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.ExpectedSummary, conversation.Summary(tc.Event))
			assert.Equal(t, tc.ExpectedDuration, conversation.Duration(tc.Event))
		})
	}
}

func TestFormatBody(t *testing.T) {
	event := &models.WebhookEvent{
		ConversationID:      "conv_abc",
		AgentID:             "agent_xyz",
		StartTimeUnix:       helpers.Ptr(int64(0)),
		CallDurationSeconds: helpers.Ptr(22.0),
		CallSuccessful:      helpers.Ptr("success"),
		Summary:             helpers.Ptr("Refund requested."),
		Transcript:          []models.Turn{{Role: "agent", Message: "Hello"}},
	}

	expected := "Conversation ID: conv_abc\n" +
		"Agent ID: agent_xyz\n" +
		"Started: 1970-01-01T00:00:00Z\n" +
		"Call duration: 22 seconds\n" +
		"Call successful: success\n" +
		"\nSummary:\nRefund requested.\n\n" +
		"Transcript:\n\nAGENT: Hello\n"
	assert.Equal(t, expected, conversation.FormatBody(event))

	minimal := conversation.FormatBody(&models.WebhookEvent{ConversationID: "c"})
	assert.Equal(t, "Conversation ID: c\nCall duration: N/A\n\nSummary:\nNo summary available.\n\nNo transcript available.\n", minimal)
}

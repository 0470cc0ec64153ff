// Package conversation parses post-call webhook payloads and renders their transcripts.
package conversation

import (
	"bytes"
	"encoding/json"

	"github.com/isometry/convai-webhook/internal/models"
	"github.com/pkg/errors"
)

// EventTypePostCallTranscription is the only event type processed.
const EventTypePostCallTranscription = "post_call_transcription"

type payload struct {
	Type           *string `json:"type"`
	EventTimestamp int64   `json:"event_timestamp"`
	Data           struct {
		AgentID        string `json:"agent_id"`
		ConversationID string `json:"conversation_id"`
		Status         string `json:"status"`
		Transcript     []struct {
			Role    string `json:"role"`
			Message string `json:"message"`
		} `json:"transcript"`
		Metadata struct {
			StartTimeUnixSecs *int64   `json:"start_time_unix_secs"`
			CallDurationSecs  *float64 `json:"call_duration_secs"`
		} `json:"metadata"`
		Analysis struct {
			TranscriptSummary *string `json:"transcript_summary"`
			CallSuccessful    *string `json:"call_successful"`
		} `json:"analysis"`
	} `json:"data"`
}

// Parse decodes a verified raw body into a WebhookEvent.
// Transcript, summary and duration are optional; type and conversation id are not.
func Parse(raw []byte) (*models.WebhookEvent, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.Wrap(ErrMalformedPayload, "empty body")
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, errors.Wrap(ErrMalformedPayload, err.Error())
	}

	if p.Type == nil {
		return nil, errors.Wrap(ErrUnsupportedEventType, "missing type")
	}
	if *p.Type != EventTypePostCallTranscription {
		return nil, errors.Wrapf(ErrUnsupportedEventType, "%q", *p.Type)
	}
	if p.Data.ConversationID == "" {
		return nil, ErrMissingConversationID
	}

	event := &models.WebhookEvent{
		Type:                *p.Type,
		EventTimestamp:      p.EventTimestamp,
		ConversationID:      p.Data.ConversationID,
		AgentID:             p.Data.AgentID,
		Status:              p.Data.Status,
		Summary:             p.Data.Analysis.TranscriptSummary,
		CallSuccessful:      p.Data.Analysis.CallSuccessful,
		CallDurationSeconds: p.Data.Metadata.CallDurationSecs,
		StartTimeUnix:       p.Data.Metadata.StartTimeUnixSecs,
	}
	for _, turn := range p.Data.Transcript {
		event.Transcript = append(event.Transcript, models.Turn{Role: turn.Role, Message: turn.Message})
	}
	return event, nil
}

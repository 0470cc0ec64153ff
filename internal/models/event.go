package models

import "fmt"

// Turn is a single utterance in a conversation transcript.
type Turn struct {
	Role    string
	Message string
}

// WebhookEvent is the verified, parsed post-call webhook delivery.
type WebhookEvent struct {
	Type           string
	EventTimestamp int64

	ConversationID string
	AgentID        string
	Status         string

	Transcript          []Turn
	Summary             *string
	CallSuccessful      *string
	CallDurationSeconds *float64
	StartTimeUnix       *int64
}

// AudioAsset is the recording of a conversation, held in memory for the lifetime of a request.
type AudioAsset struct {
	ConversationID string
	Bytes          []byte
	ContentType    string
}

// Filename returns the attachment filename for the recording.
func (a *AudioAsset) Filename() string {
	return fmt.Sprintf("conversation-%s.mp3", a.ConversationID)
}

// NotificationMessage is the email sent for a processed conversation.
type NotificationMessage struct {
	Subject    string
	BodyText   string
	Attachment *AudioAsset
}

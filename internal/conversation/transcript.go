package conversation

import (
	"strconv"
	"strings"
	"time"

	"github.com/isometry/convai-webhook/internal/helpers"
	"github.com/isometry/convai-webhook/internal/models"
)

const (
	TranscriptHeader = "Transcript:"
	NoTranscript     = "No transcript available."
	NoSummary        = "No summary available."
	NoDuration       = "N/A"
)

// FormatTranscript renders the turns as "ROLE: message" blocks separated by blank lines, under a header line.
// An empty transcript renders as a fixed placeholder.
func FormatTranscript(turns []models.Turn) string {
	if len(turns) == 0 {
		return NoTranscript
	}
	blocks := make([]string, 0, len(turns))
	for _, turn := range turns {
		blocks = append(blocks, strings.ToUpper(turn.Role)+": "+turn.Message)
	}
	return TranscriptHeader + "\n\n" + strings.Join(blocks, "\n\n")
}

// Summary returns the transcript summary, or a placeholder.
func Summary(event *models.WebhookEvent) string {
	summary := helpers.String(event.Summary)
	if strings.TrimSpace(summary) == "" {
		return NoSummary
	}
	return summary
}

// Duration returns the call duration in seconds, or a placeholder.
func Duration(event *models.WebhookEvent) string {
	if event.CallDurationSeconds == nil {
		return NoDuration
	}
	return strconv.FormatFloat(*event.CallDurationSeconds, 'f', -1, 64) + " seconds"
}

// FormatBody renders the notification text for an event.
func FormatBody(event *models.WebhookEvent) string {
	var b strings.Builder
	b.WriteString("Conversation ID: " + event.ConversationID + "\n")
	if event.AgentID != "" {
		b.WriteString("Agent ID: " + event.AgentID + "\n")
	}
	if event.StartTimeUnix != nil {
		b.WriteString("Started: " + time.Unix(*event.StartTimeUnix, 0).UTC().Format(time.RFC3339) + "\n")
	}
	b.WriteString("Call duration: " + Duration(event) + "\n")
	if outcome := helpers.String(event.CallSuccessful); outcome != "" {
		b.WriteString("Call successful: " + outcome + "\n")
	}
	b.WriteString("\nSummary:\n" + Summary(event) + "\n\n")
	b.WriteString(FormatTranscript(event.Transcript) + "\n")
	return b.String()
}

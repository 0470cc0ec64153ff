package conversation

import "github.com/pkg/errors"

var (
	ErrMalformedPayload      = errors.New("malformed payload")
	ErrUnsupportedEventType  = errors.New("unsupported event type")
	ErrMissingConversationID = errors.New("missing conversation_id")
)

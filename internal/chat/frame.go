package chat

import (
	"time"

	"github.com/phrazzld/taskhub-api/internal/domain"
)

// Frame types sent to clients. Message frames reuse the domain message types.
const (
	FrameTyping = "typing"
	FrameError  = "error"
)

// Fixed texts sent by the relay.
const (
	TypingText        = "AI is thinking..."
	InvalidFormatText = "Invalid message format"
	ProcessFailedText = "Failed to process message"
	welcomeFormat     = "Connected to AI Assistant! Session: %s"
)

// Frame is a server-to-client WebSocket message.
type Frame struct {
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
}

// inbound is a client-to-server WebSocket message. A nil Content means the
// field was absent.
type inbound struct {
	Content *string `json:"content"`
}

func messageFrame(msg *domain.ChatMessage) Frame {
	return Frame{
		Type:      string(msg.Type),
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		SessionID: msg.SessionID,
	}
}

func statusFrame(typ, content string) Frame {
	return Frame{Type: typ, Content: content, Timestamp: time.Now().UTC()}
}

package chat

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/service"
)

var cannedTemplates = []string{
	"That's interesting! Based on our conversation, I can see you're asking about: '%s'",
	"I understand. Let me help you with that question: '%s'",
	"Thanks for sharing! Regarding '%s', here's what I think...",
	"Great question about '%s'. Let me provide some insights...",
}

// CannedResponder answers with one of a few templates quoting the message.
// It never fails and is used when no model is configured.
type CannedResponder struct {
	intn func(n int) int
}

// NewCannedResponder returns a responder picking templates at random.
func NewCannedResponder() *CannedResponder {
	return &CannedResponder{intn: rand.IntN}
}

// Respond implements service.Assistant.
func (c *CannedResponder) Respond(_ context.Context, _ []*domain.ChatMessage, message string) (string, error) {
	return fmt.Sprintf(cannedTemplates[c.intn(len(cannedTemplates))], message), nil
}

var _ service.Assistant = (*CannedResponder)(nil)

package gemini

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/phrazzld/taskhub-api/internal/domain"
)

const defaultPromptTemplate = `You are a helpful assistant inside a task management app.
Answer the last user message briefly and in plain text.

Conversation so far:
{{range .History}}{{label .Type}}: {{.Content}}
{{end}}
User: {{.Message}}
Assistant:`

type promptData struct {
	History []*domain.ChatMessage
	Message string
}

func parsePromptTemplate(text string) (*template.Template, error) {
	return template.New("chat").Funcs(template.FuncMap{"label": speakerLabel}).Parse(text)
}

func speakerLabel(t domain.MessageType) string {
	switch t {
	case domain.MessageTypeUser:
		return "User"
	case domain.MessageTypeAssistant:
		return "Assistant"
	default:
		return "System"
	}
}

// buildPrompt renders the transcript. The service hands over a history that
// already ends with message, so that trailing copy is dropped here.
func buildPrompt(tmpl *template.Template, history []*domain.ChatMessage, message string) (string, error) {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.Type == domain.MessageTypeUser && last.Content == message {
			history = history[:n-1]
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{History: history, Message: message}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

package agent

import (
	"strings"

	"github.com/cloudwego/eino/schema"
)

// formatChatHistory renders the last window turns as "User:"/"Assistant:"
// lines for prompt context. Only a bounded suffix is ever rendered; the
// persisted history itself is unbounded.
func formatChatHistory(messages []*schema.Message, window int) string {
	if len(messages) == 0 {
		return "No previous conversation."
	}
	if window > 0 && len(messages) > window {
		messages = messages[len(messages)-window:]
	}

	var lines []string
	for _, msg := range messages {
		if msg == nil || msg.Content == "" {
			continue
		}
		switch msg.Role {
		case schema.User:
			lines = append(lines, "User: "+msg.Content)
		case schema.Assistant:
			lines = append(lines, "Assistant: "+msg.Content)
		}
	}
	if len(lines) == 0 {
		return "No previous conversation."
	}
	return strings.Join(lines, "\n")
}

// lastUserMessage returns the content of the most recent user turn.
func lastUserMessage(messages []*schema.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i] != nil && messages[i].Role == schema.User {
			return messages[i].Content
		}
	}
	return ""
}

// userTurns returns user-authored contents oldest to newest. Assistant turns
// are excluded so contact extraction never feeds on the bot's own examples.
func userTurns(messages []*schema.Message) []string {
	var out []string
	for _, msg := range messages {
		if msg != nil && msg.Role == schema.User && msg.Content != "" {
			out = append(out, msg.Content)
		}
	}
	return out
}

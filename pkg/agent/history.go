package agent

import (
	"fmt"
	"strings"
)

// LastN returns the final n messages in their original order, or the whole
// history when fewer than n exist. The slice aliases the input; callers must
// not mutate it.
func LastN(history []ChatMessage, n int) []ChatMessage {
	if n >= len(history) {
		return history
	}
	return history[len(history)-n:]
}

// recentWindow is the number of trailing messages handed to the routing and
// grading prompts. Generation prompts receive the full history instead.
const recentWindow = 4

// RenderHistory formats messages as alternating "Human: ..." / "Assistant: ..."
// lines, one per message.
func RenderHistory(history []ChatMessage) string {
	var b strings.Builder
	for _, msg := range history {
		prefix := "Human: "
		if msg.Role == RoleAssistant {
			prefix = "Assistant: "
		}
		b.WriteString(prefix)
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return b.String()
}

// routingContext builds the context string for the router: a rendered window
// of recent messages plus the current question, or the bare question when
// the history is empty.
func routingContext(question string, history []ChatMessage) string {
	if len(history) == 0 {
		return question
	}
	recent := LastN(history, recentWindow)
	return fmt.Sprintf("Chat history:\n%s\nCurrent question: %s", RenderHistory(recent), question)
}

// gradingContext builds the per-document grading context: the raw contents
// of the recent window joined with the question.
func gradingContext(question string, history []ChatMessage) string {
	if len(history) == 0 {
		return question
	}
	recent := LastN(history, recentWindow)
	parts := make([]string, 0, len(recent)+1)
	for _, msg := range recent {
		parts = append(parts, msg.Content)
	}
	parts = append(parts, question)
	return strings.Join(parts, " ")
}

// answerGradingContext builds the context for the answer-quality check: the
// recent window minus the message under grading, plus the question. Falls
// back to the bare question for short histories.
func answerGradingContext(question string, history []ChatMessage) string {
	if len(history) < 2 {
		return question
	}
	recent := LastN(history, recentWindow)
	recent = recent[:len(recent)-1]
	return fmt.Sprintf("Chat context:\n%s\nQuestion: %s", RenderHistory(recent), question)
}

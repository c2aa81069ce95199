package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLastN(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleHuman, Content: "one"},
		{Role: RoleAssistant, Content: "two"},
		{Role: RoleHuman, Content: "three"},
		{Role: RoleAssistant, Content: "four"},
		{Role: RoleHuman, Content: "five"},
	}

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"window smaller than history", 2, []string{"four", "five"}},
		{"window equals history", 5, []string{"one", "two", "three", "four", "five"}},
		{"window larger than history", 10, []string{"one", "two", "three", "four", "five"}},
		{"zero window", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LastN(history, tt.n)
			contents := make([]string, 0, len(got))
			for _, msg := range got {
				contents = append(contents, msg.Content)
			}
			assert.Equal(t, tt.want, contents)
		})
	}
}

func TestLastNIdempotentWhenWindowCoversHistory(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleHuman, Content: "hello"},
	}
	got := LastN(history, 4)
	assert.Equal(t, history, got)
	assert.Equal(t, got, LastN(got, 4))
}

func TestAppendThenWindowRoundTrip(t *testing.T) {
	var history []ChatMessage
	history = append(history,
		ChatMessage{Role: RoleHuman, Content: "question"},
		ChatMessage{Role: RoleAssistant, Content: "answer"},
	)

	got := LastN(history, 4)
	assert.Len(t, got, 2)
	assert.Equal(t, "question", got[0].Content)
	assert.Equal(t, "answer", got[1].Content)
}

func TestRenderHistory(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleHuman, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	assert.Equal(t, "Human: hi\nAssistant: hello\n", RenderHistory(history))
	assert.Equal(t, "", RenderHistory(nil))
}

func TestRoutingContext(t *testing.T) {
	assert.Equal(t, "what is go?", routingContext("what is go?", nil))

	history := []ChatMessage{
		{Role: RoleHuman, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}
	got := routingContext("what is go?", history)
	assert.Contains(t, got, "Chat history:")
	assert.Contains(t, got, "Human: hi")
	assert.Contains(t, got, "Current question: what is go?")
}

func TestAnswerGradingContextShortHistoryFallsBack(t *testing.T) {
	assert.Equal(t, "q", answerGradingContext("q", nil))
	assert.Equal(t, "q", answerGradingContext("q", []ChatMessage{{Role: RoleHuman, Content: "x"}}))
}

func TestAnswerGradingContextDropsCurrentMessage(t *testing.T) {
	history := []ChatMessage{
		{Role: RoleHuman, Content: "first"},
		{Role: RoleAssistant, Content: "second"},
		{Role: RoleHuman, Content: "third"},
	}
	got := answerGradingContext("q", history)
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.NotContains(t, got, "third")
	assert.Contains(t, got, "Question: q")
}

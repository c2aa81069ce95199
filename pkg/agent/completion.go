package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"adaptive-rag-be/pkg/llm"
)

// LLMGateway implements CompletionGateway on top of a provider-agnostic
// LLMProvider. Classification calls run in JSON mode with a low temperature.
type LLMGateway struct {
	provider llm.LLMProvider
}

var _ CompletionGateway = &LLMGateway{}

func NewLLMGateway(provider llm.LLMProvider) *LLMGateway {
	return &LLMGateway{provider: provider}
}

func (g *LLMGateway) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := g.provider.Generate(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return "", &GatewayError{Op: "complete", Err: err}
	}
	return out, nil
}

func (g *LLMGateway) Classify(ctx context.Context, instructions, prompt, key string) (string, error) {
	history := []llm.Message{
		{Role: "system", Content: instructions},
		{Role: "user", Content: prompt},
	}
	out, err := g.provider.Chat(ctx, history, llm.WithTemperature(0), llm.WithJSONFormat())
	if err != nil {
		return "", &GatewayError{Op: "classify", Err: err}
	}
	return parseClassification(out, key)
}

// parseClassification extracts the declared key from a JSON object reply.
// Anything else, including a missing key or a non-string value, is a
// malformed classification.
func parseClassification(payload, key string) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: missing key %q", ErrMalformedClassification, key)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%w: key %q is not a string", ErrMalformedClassification, key)
	}
	return value, nil
}

package agent

import (
	"context"
	"errors"
	"testing"

	"adaptive-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	chatOut     string
	generateOut string
	err         error

	lastOptions llm.Options
}

func (s *stubProvider) Chat(_ context.Context, _ []llm.Message, options ...llm.Option) (string, error) {
	for _, opt := range options {
		opt(&s.lastOptions)
	}
	return s.chatOut, s.err
}

func (s *stubProvider) Generate(_ context.Context, _ string, options ...llm.Option) (string, error) {
	for _, opt := range options {
		opt(&s.lastOptions)
	}
	return s.generateOut, s.err
}

func TestClassifyExtractsDeclaredKey(t *testing.T) {
	provider := &stubProvider{chatOut: `{"datasource": "vectorstore"}`}
	gateway := NewLLMGateway(provider)

	got, err := gateway.Classify(context.Background(), "instructions", "prompt", "datasource")
	require.NoError(t, err)
	assert.Equal(t, "vectorstore", got)
	assert.True(t, provider.lastOptions.JSONFormat)
	assert.Zero(t, provider.lastOptions.Temperature)
}

func TestClassifyMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "vectorstore"},
		{"wrong key", `{"unexpected_key": "x"}`},
		{"non-string value", `{"datasource": 42}`},
		{"empty object", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := NewLLMGateway(&stubProvider{chatOut: tt.payload})
			_, err := gateway.Classify(context.Background(), "instructions", "prompt", "datasource")
			assert.ErrorIs(t, err, ErrMalformedClassification)
		})
	}
}

func TestClassifyToleratesSurroundingWhitespace(t *testing.T) {
	gateway := NewLLMGateway(&stubProvider{chatOut: "\n  {\"binary_score\": \"yes\"}  \n"})
	got, err := gateway.Classify(context.Background(), "instructions", "prompt", "binary_score")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
}

func TestCompleteWrapsProviderError(t *testing.T) {
	providerErr := errors.New("connection refused")
	gateway := NewLLMGateway(&stubProvider{err: providerErr})

	_, err := gateway.Complete(context.Background(), "prompt")
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, "complete", gwErr.Op)
	assert.ErrorIs(t, err, providerErr)
}

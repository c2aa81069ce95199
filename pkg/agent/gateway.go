package agent

import "context"

// CompletionGateway abstracts "generate free text" and "generate a structured
// classification" calls. Implementations must be safe for concurrent use
// across turns.
type CompletionGateway interface {
	// Complete sends a prompt and returns the raw model output.
	Complete(ctx context.Context, prompt string) (string, error)

	// Classify sends system instructions plus a prompt and returns the value
	// of exactly the declared key from the model's JSON reply. A payload that
	// cannot be parsed into that key fails with ErrMalformedClassification.
	Classify(ctx context.Context, instructions, prompt, key string) (string, error)
}

// RetrievalGateway abstracts similarity search over the knowledge store and
// web search.
type RetrievalGateway interface {
	// SimilaritySearch returns the backend-ranked top-k documents for the query.
	SimilaritySearch(ctx context.Context, query string, k int) ([]Document, error)

	// WebSearch returns documents synthesized from raw result snippets; when
	// the backend returns multiple snippets they are concatenated into a
	// single document, preserving backend order.
	WebSearch(ctx context.Context, query string) ([]Document, error)
}

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"adaptive-rag-be/internal/repository/unitofwork"
	"adaptive-rag-be/pkg/agent"
	"adaptive-rag-be/pkg/embedding"
	"adaptive-rag-be/pkg/websearch"
)

// Store backs agent.RetrievalGateway with the pgvector chunk store and a
// web-search client.
type Store struct {
	repoFactory       unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	searchClient      websearch.Client
}

var _ agent.RetrievalGateway = &Store{}

func NewStore(
	repoFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	searchClient websearch.Client,
) *Store {
	return &Store{
		repoFactory:       repoFactory,
		embeddingProvider: embeddingProvider,
		searchClient:      searchClient,
	}
}

func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]agent.Document, error) {
	resp, err := s.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	uow := s.repoFactory.NewUnitOfWork(ctx)
	chunks, err := uow.DocumentEmbeddingRepository().SearchSimilar(ctx, resp.Embedding.Values, k)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	docs := make([]agent.Document, len(chunks))
	for i, chunk := range chunks {
		metadata := make(map[string]string, len(chunk.Metadata))
		for key, value := range chunk.Metadata {
			metadata[key] = value
		}
		docs[i] = agent.Document{
			Content:  chunk.Chunk,
			Metadata: metadata,
		}
	}
	return docs, nil
}

func (s *Store) WebSearch(ctx context.Context, query string) ([]agent.Document, error) {
	results, err := s.searchClient.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	// All snippets merge into one document so downstream grading sees the
	// web evidence as a single unit, in backend rank order.
	contents := make([]string, len(results))
	for i, result := range results {
		contents[i] = result.Content
	}
	return []agent.Document{
		{
			Content:  strings.Join(contents, "\n"),
			Metadata: map[string]string{},
		},
	}, nil
}

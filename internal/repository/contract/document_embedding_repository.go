package contract

import (
	"context"

	"adaptive-rag-be/internal/entity"

	"github.com/google/uuid"
)

type DocumentEmbeddingRepository interface {
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error

	// SearchSimilar returns the top-limit chunks ranked by pgvector cosine
	// distance against the query embedding.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.DocumentEmbedding, error)
}

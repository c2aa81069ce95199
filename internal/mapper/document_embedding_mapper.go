package mapper

import (
	"fmt"

	"adaptive-rag-be/internal/entity"
	"adaptive-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentEmbeddingMapper struct{}

func NewDocumentEmbeddingMapper() *DocumentEmbeddingMapper {
	return &DocumentEmbeddingMapper{}
}

func (m *DocumentEmbeddingMapper) ToEntity(e *model.DocumentEmbedding) *entity.DocumentEmbedding {
	if e == nil {
		return nil
	}

	metadata := make(map[string]string, len(e.Metadata))
	for k, v := range e.Metadata {
		metadata[k] = fmt.Sprintf("%v", v)
	}

	return &entity.DocumentEmbedding{
		Id:         e.Id,
		DocumentId: e.DocumentId,
		Chunk:      e.Chunk,
		ChunkIndex: e.ChunkIndex,
		Embedding:  e.EmbeddingValue.Slice(),
		Metadata:   metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func (m *DocumentEmbeddingMapper) ToModel(e *entity.DocumentEmbedding) *model.DocumentEmbedding {
	if e == nil {
		return nil
	}

	metadata := make(datatypes.JSONMap, len(e.Metadata))
	for k, v := range e.Metadata {
		metadata[k] = v
	}

	return &model.DocumentEmbedding{
		Id:             e.Id,
		DocumentId:     e.DocumentId,
		Chunk:          e.Chunk,
		ChunkIndex:     e.ChunkIndex,
		EmbeddingValue: pgvector.NewVector(e.Embedding),
		Metadata:       metadata,
		CreatedAt:      e.CreatedAt,
	}
}

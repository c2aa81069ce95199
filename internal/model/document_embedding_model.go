package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DocumentEmbedding struct {
	Id             uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId     uuid.UUID         `gorm:"type:uuid;not null;index"`
	Chunk          string            `gorm:"type:text"`
	ChunkIndex     int               `gorm:"default:0"` // 0-based index for ordering
	EmbeddingValue pgvector.Vector   `gorm:"type:vector(768)"` // nomic-embed-text uses 768 dimensions
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt      time.Time         `gorm:"autoCreateTime"`
	DeletedAt      gorm.DeletedAt    `gorm:"index"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one embedded chunk of a knowledge document.
type DocumentEmbedding struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Chunk      string
	ChunkIndex int
	Embedding  []float32
	Metadata   map[string]string
	CreatedAt  time.Time
}

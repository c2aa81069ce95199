package entity

import (
	"time"

	"github.com/google/uuid"
)

// KnowledgeDocument is one source document in the shared knowledge base.
type KnowledgeDocument struct {
	Id        uuid.UUID
	Title     string
	Filename  string
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

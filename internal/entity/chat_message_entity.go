package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage rows are append-only; ordering is creation order and
// duplicates are valid (repeated questions happen).
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	CreatedAt     time.Time
}

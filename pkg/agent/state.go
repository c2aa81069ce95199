package agent

import "time"

// Chat roles as stored in history and in the messages table.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// WebSearchFlag is the decision produced by document grading and consumed
// by the grade_documents -> generate/websearch transition.
type WebSearchFlag string

const (
	FlagPending WebSearchFlag = "pending"
	FlagYes     WebSearchFlag = "yes"
	FlagNo      WebSearchFlag = "no"
)

// Document is a unit of retrieved evidence. Web-search documents may carry
// an empty metadata map.
type Document struct {
	Content  string
	Metadata map[string]string
}

// ChatMessage is one turn half in the conversation history. Append-only,
// ordering = creation order, duplicates are valid.
type ChatMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// WorkingState is the mutable record threaded through the graph for a single
// query turn. It is owned exclusively by the engine during a run and
// discarded once a terminal node is reached.
type WorkingState struct {
	Question      string
	Documents     []Document
	Generation    string
	WebSearchFlag WebSearchFlag
	LoopStep      int
	MaxRetries    int
	ChatHistory   []ChatMessage
	UserID        string
	ChatID        string
}

// StateUpdate carries only the fields a node changed. Nil pointers mean
// "untouched". Question, MaxRetries, UserID and ChatID are immutable for the
// turn, so no node can write them.
type StateUpdate struct {
	Documents     *[]Document
	Generation    *string
	WebSearchFlag *WebSearchFlag
	LoopStep      *int
	ChatHistory   *[]ChatMessage
}

// Apply merges a partial update into the running state.
func (s *WorkingState) Apply(u StateUpdate) {
	if u.Documents != nil {
		s.Documents = *u.Documents
	}
	if u.Generation != nil {
		s.Generation = *u.Generation
	}
	if u.WebSearchFlag != nil {
		s.WebSearchFlag = *u.WebSearchFlag
	}
	if u.LoopStep != nil {
		s.LoopStep = *u.LoopStep
	}
	if u.ChatHistory != nil {
		s.ChatHistory = *u.ChatHistory
	}
}

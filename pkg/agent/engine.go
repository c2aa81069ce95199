package agent

import (
	"context"
	"fmt"
	"io"
	"log"
)

// Outcome is the terminal result of a turn.
type Outcome string

const (
	// OutcomeSuccess means a generation passed both self-checks (or took the
	// direct route, which is not self-checked).
	OutcomeSuccess Outcome = "success"

	// OutcomeMaxRetries means the retry budget was spent; the last generated
	// answer is still returned, never a blank response.
	OutcomeMaxRetries Outcome = "max_retries"
)

// Terminal pseudo-nodes. The engine never transitions out of them.
const (
	terminalSuccess    = "__success__"
	terminalMaxRetries = "__max_retries__"
)

// DefaultMaxRetries is the generation retry ceiling applied when the caller
// does not set one.
const DefaultMaxRetries = 3

type nodeFunc func(ctx context.Context, state *WorkingState) (StateUpdate, error)
type transitionFunc func(ctx context.Context, state *WorkingState) (string, error)

// Engine executes the adaptive answer graph as an explicit state machine:
// a table of nodes, a table of per-node transition functions, and a small
// interpreter loop. It holds no per-turn state, so one instance is safely
// reused across turns as long as turns on the same chat are serialized by
// the caller.
type Engine struct {
	completion CompletionGateway
	retrieval  RetrievalGateway
	logger     *log.Logger

	nodes       map[string]nodeFunc
	transitions map[string]transitionFunc
}

// Turn is the input for one question/answer exchange.
type Turn struct {
	Question   string
	History    []ChatMessage
	MaxRetries int
	UserID     string
	ChatID     string
}

// Result is the terminal state of a completed turn.
type Result struct {
	Answer    string
	History   []ChatMessage
	Documents []Document
	LoopStep  int
	Outcome   Outcome
}

func NewEngine(completion CompletionGateway, retrieval RetrievalGateway, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	e := &Engine{
		completion: completion,
		retrieval:  retrieval,
		logger:     logger,
	}

	e.nodes = map[string]nodeFunc{
		nodeWebSearch:      e.webSearch,
		nodeRetrieve:       e.retrieve,
		nodeGradeDocuments: e.gradeDocuments,
		nodeGenerate:       e.generate,
		nodeSimpleGenerate: e.simpleGenerate,
	}

	e.transitions = map[string]transitionFunc{
		nodeRetrieve:  staticEdge(nodeGradeDocuments),
		nodeWebSearch: staticEdge(nodeGenerate),
		nodeGradeDocuments: func(ctx context.Context, state *WorkingState) (string, error) {
			return decideToGenerate(state), nil
		},
		nodeGenerate: func(ctx context.Context, state *WorkingState) (string, error) {
			decision, err := e.gradeGeneration(ctx, state)
			if err != nil {
				return "", err
			}
			switch decision {
			case decisionUseful:
				return terminalSuccess, nil
			case decisionNotSupported:
				return nodeGenerate, nil
			case decisionNotUseful:
				return nodeWebSearch, nil
			default: // decisionMaxRetries
				return terminalMaxRetries, nil
			}
		},
		nodeSimpleGenerate: staticEdge(terminalSuccess),
	}

	return e
}

func staticEdge(next string) transitionFunc {
	return func(context.Context, *WorkingState) (string, error) {
		return next, nil
	}
}

// entryNode maps the router's datasource to the first node of the turn.
func entryNode(route string) string {
	switch route {
	case routeWebSearch:
		return nodeWebSearch
	case routeVectorstore:
		return nodeRetrieve
	default: // routeGenerate, validated by routeQuestion
		return nodeSimpleGenerate
	}
}

// Run drives one turn from the entry routing decision to a terminal state.
// Nodes execute strictly sequentially; each returns a partial update that is
// merged into the running state. At most MaxRetries+1 generation attempts
// are made.
func (e *Engine) Run(ctx context.Context, turn Turn) (*Result, error) {
	maxRetries := turn.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	state := &WorkingState{
		Question:      turn.Question,
		WebSearchFlag: FlagPending,
		MaxRetries:    maxRetries,
		ChatHistory:   turn.History,
		UserID:        turn.UserID,
		ChatID:        turn.ChatID,
	}

	route, err := e.routeQuestion(ctx, state)
	if err != nil {
		return nil, err
	}
	current := entryNode(route)

	// Upper bound on interpreter iterations. The loop-step checks inside
	// gradeGeneration terminate every real run well before this; the cap
	// only guards against a miswired table.
	maxSteps := 4 + 4*(maxRetries+1)

	for step := 0; ; step++ {
		if step >= maxSteps {
			return nil, fmt.Errorf("graph did not terminate after %d steps", maxSteps)
		}

		node, ok := e.nodes[current]
		if !ok {
			return nil, fmt.Errorf("unknown graph node %q", current)
		}

		update, err := node(ctx, state)
		if err != nil {
			return nil, err
		}
		state.Apply(update)

		next, err := e.transitions[current](ctx, state)
		if err != nil {
			return nil, err
		}

		switch next {
		case terminalSuccess:
			return e.finish(state, OutcomeSuccess), nil
		case terminalMaxRetries:
			return e.finish(state, OutcomeMaxRetries), nil
		}
		current = next
	}
}

func (e *Engine) finish(state *WorkingState, outcome Outcome) *Result {
	e.logger.Printf("[ENGINE] Turn finished: outcome=%s loop_step=%d", outcome, state.LoopStep)
	return &Result{
		Answer:    state.Generation,
		History:   state.ChatHistory,
		Documents: state.Documents,
		LoopStep:  state.LoopStep,
		Outcome:   outcome,
	}
}

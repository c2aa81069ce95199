package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompletion drives the engine through a fixed path. Classification
// answers are dispatched on the instruction set; grades are consumed in order.
type scriptedCompletion struct {
	route              string
	docGrades          []string
	hallucinationGrade []string
	answerGrade        []string
	completions        []string
	classifyErr        error

	classifyCalls int
	completeCalls int
	lastComplete  string
}

func (s *scriptedCompletion) Complete(_ context.Context, prompt string) (string, error) {
	s.completeCalls++
	s.lastComplete = prompt
	if len(s.completions) > 0 {
		out := s.completions[0]
		s.completions = s.completions[1:]
		return out, nil
	}
	return "generated answer", nil
}

func pop(grades *[]string) string {
	if len(*grades) == 0 {
		return "yes"
	}
	out := (*grades)[0]
	*grades = (*grades)[1:]
	return out
}

func (s *scriptedCompletion) Classify(_ context.Context, instructions, _ string, key string) (string, error) {
	s.classifyCalls++
	if s.classifyErr != nil {
		return "", s.classifyErr
	}
	switch instructions {
	case routerInstructions:
		return s.route, nil
	case docGraderInstructions:
		return pop(&s.docGrades), nil
	case hallucinationGraderInstructions:
		return pop(&s.hallucinationGrade), nil
	case answerGraderInstructions:
		return pop(&s.answerGrade), nil
	}
	return "", errors.New("unexpected classification: " + key)
}

type scriptedRetrieval struct {
	similar []Document

	webCalls   int
	lastQuery  string
	webContent string
}

func (s *scriptedRetrieval) SimilaritySearch(_ context.Context, _ string, _ int) ([]Document, error) {
	return s.similar, nil
}

func (s *scriptedRetrieval) WebSearch(_ context.Context, query string) ([]Document, error) {
	s.webCalls++
	s.lastQuery = query
	content := s.webContent
	if content == "" {
		content = "web snippet"
	}
	return []Document{{Content: content, Metadata: map[string]string{}}}, nil
}

func threeDocs() []Document {
	return []Document{
		{Content: "alpha", Metadata: map[string]string{"title": "a"}},
		{Content: "beta", Metadata: map[string]string{"title": "b"}},
		{Content: "gamma", Metadata: map[string]string{"title": "c"}},
	}
}

func TestRunVectorstoreSuccess(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeVectorstore,
		docGrades:          []string{"yes", "yes", "yes"},
		hallucinationGrade: []string{"yes"},
		answerGrade:        []string{"yes"},
	}
	retrieval := &scriptedRetrieval{similar: threeDocs()}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "what is alpha?"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "generated answer", result.Answer)
	assert.Equal(t, 1, result.LoopStep)
	assert.Len(t, result.Documents, 3)
	assert.Zero(t, retrieval.webCalls)

	require.Len(t, result.History, 2)
	assert.Equal(t, RoleHuman, result.History[0].Role)
	assert.Equal(t, "what is alpha?", result.History[0].Content)
	assert.Equal(t, RoleAssistant, result.History[1].Role)
	assert.Equal(t, "generated answer", result.History[1].Content)
}

func TestRunIrrelevantDocumentTriggersWebSearch(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeVectorstore,
		docGrades:          []string{"yes", "no", "yes"},
		hallucinationGrade: []string{"yes"},
		answerGrade:        []string{"yes"},
	}
	retrieval := &scriptedRetrieval{similar: threeDocs()}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "what is beta?"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, retrieval.webCalls)

	// Survivors keep their order, the web document lands at the end.
	require.Len(t, result.Documents, 3)
	assert.Equal(t, "alpha", result.Documents[0].Content)
	assert.Equal(t, "gamma", result.Documents[1].Content)
	assert.Equal(t, "web snippet", result.Documents[2].Content)
}

func TestRunMaxRetriesReturnsLastAnswer(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeWebSearch,
		hallucinationGrade: []string{"no", "no", "no"},
	}
	retrieval := &scriptedRetrieval{}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "breaking news?", MaxRetries: 2})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMaxRetries, result.Outcome)
	assert.Equal(t, 3, result.LoopStep)
	assert.NotEmpty(t, result.Answer)
}

func TestRunDirectRouteSkipsSelfCheck(t *testing.T) {
	completion := &scriptedCompletion{route: routeGenerate}
	retrieval := &scriptedRetrieval{}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "hello!"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 1, result.LoopStep)
	assert.Empty(t, result.Documents)
	// Only the routing decision is classified; no grading of any kind.
	assert.Equal(t, 1, completion.classifyCalls)
}

func TestRunUnhelpfulAnswerEscalatesToWebSearch(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeVectorstore,
		docGrades:          []string{"yes", "yes", "yes"},
		hallucinationGrade: []string{"yes", "yes"},
		answerGrade:        []string{"no", "yes"},
	}
	retrieval := &scriptedRetrieval{similar: threeDocs()}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "what changed today?"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 2, result.LoopStep)
	assert.Equal(t, 1, retrieval.webCalls)
	require.Len(t, result.Documents, 4)
	assert.Equal(t, "web snippet", result.Documents[3].Content)
}

func TestRunUngroundedAnswerRetriesSameEvidence(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeVectorstore,
		docGrades:          []string{"yes", "yes", "yes"},
		hallucinationGrade: []string{"no", "yes"},
		answerGrade:        []string{"yes"},
	}
	retrieval := &scriptedRetrieval{similar: threeDocs()}

	engine := NewEngine(completion, retrieval, nil)
	result, err := engine.Run(context.Background(), Turn{Question: "what is gamma?"})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, 2, result.LoopStep)
	// Regeneration reuses the evidence; no web search happened.
	assert.Zero(t, retrieval.webCalls)
	assert.Len(t, result.Documents, 3)

	// Each attempt appends its exchange to the working history copy; the
	// caller persists exactly one question/answer pair regardless.
	require.Len(t, result.History, 4)
	assert.Equal(t, "what is gamma?", result.History[0].Content)
	assert.Equal(t, "what is gamma?", result.History[2].Content)
}

func TestRunUnroutableQuestion(t *testing.T) {
	completion := &scriptedCompletion{route: "sql"}
	engine := NewEngine(completion, &scriptedRetrieval{}, nil)

	_, err := engine.Run(context.Background(), Turn{Question: "?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnroutableQuestion)
}

func TestRunMalformedRouterPayload(t *testing.T) {
	completion := &scriptedCompletion{
		classifyErr: fmt.Errorf("%w: missing key %q", ErrMalformedClassification, "datasource"),
	}
	engine := NewEngine(completion, &scriptedRetrieval{}, nil)

	_, err := engine.Run(context.Background(), Turn{Question: "?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedClassification)
	assert.Zero(t, completion.completeCalls)
}

func TestWebSearchReformulatesQueryFromHistory(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeWebSearch,
		completions:        []string{"  better query  ", "final answer"},
		hallucinationGrade: []string{"yes"},
		answerGrade:        []string{"yes"},
	}
	retrieval := &scriptedRetrieval{}

	engine := NewEngine(completion, retrieval, nil)
	history := []ChatMessage{
		{Role: RoleHuman, Content: "tell me about storms"},
		{Role: RoleAssistant, Content: "storms are weather"},
	}
	result, err := engine.Run(context.Background(), Turn{Question: "and tomorrow?", History: history})
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, result.Outcome)
	assert.Equal(t, "better query", retrieval.lastQuery)
	// Final history = prior two messages plus the new exchange.
	assert.Len(t, result.History, 4)
}

func TestWebSearchUsesRawQuestionWithoutHumanContext(t *testing.T) {
	completion := &scriptedCompletion{
		route:              routeWebSearch,
		hallucinationGrade: []string{"yes"},
		answerGrade:        []string{"yes"},
	}
	retrieval := &scriptedRetrieval{}

	engine := NewEngine(completion, retrieval, nil)
	_, err := engine.Run(context.Background(), Turn{Question: "latest go release?"})
	require.NoError(t, err)

	assert.Equal(t, "latest go release?", retrieval.lastQuery)
}

func TestDecideToGenerate(t *testing.T) {
	tests := []struct {
		name string
		flag WebSearchFlag
		want string
	}{
		{"web search needed", FlagYes, nodeWebSearch},
		{"all relevant", FlagNo, nodeGenerate},
		{"pending treated as no", FlagPending, nodeGenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &WorkingState{WebSearchFlag: tt.flag}
			assert.Equal(t, tt.want, decideToGenerate(state))
			// Pure: calling again with the same state yields the same node.
			assert.Equal(t, tt.want, decideToGenerate(state))
		})
	}
}

func TestGradeDocumentsAllIrrelevantYieldsEmptySet(t *testing.T) {
	completion := &scriptedCompletion{
		docGrades: []string{"no", "no", "no"},
	}
	engine := NewEngine(completion, &scriptedRetrieval{}, nil)

	state := &WorkingState{Question: "q", Documents: threeDocs()}
	update, err := engine.gradeDocuments(context.Background(), state)
	require.NoError(t, err)

	assert.Empty(t, *update.Documents)
	assert.Equal(t, FlagYes, *update.WebSearchFlag)
}

func TestGenerationPromptCarriesFullHistory(t *testing.T) {
	completion := &scriptedCompletion{route: routeGenerate}
	engine := NewEngine(completion, &scriptedRetrieval{}, nil)

	history := make([]ChatMessage, 0, 10)
	for i := 0; i < 5; i++ {
		history = append(history,
			ChatMessage{Role: RoleHuman, Content: "question"},
			ChatMessage{Role: RoleAssistant, Content: "answer"},
		)
	}
	_, err := engine.Run(context.Background(), Turn{Question: "again?", History: history})
	require.NoError(t, err)

	// All ten prior messages appear, not just the recent window.
	assert.Equal(t, 5, strings.Count(completion.lastComplete, "Human: question"))
	assert.Equal(t, 5, strings.Count(completion.lastComplete, "Assistant: answer"))
}

func TestStateUpdateApplyLeavesUntouchedFields(t *testing.T) {
	state := &WorkingState{
		Question:      "q",
		Generation:    "old",
		WebSearchFlag: FlagNo,
		LoopStep:      2,
	}

	newGen := "new"
	state.Apply(StateUpdate{Generation: &newGen})

	assert.Equal(t, "new", state.Generation)
	assert.Equal(t, "q", state.Question)
	assert.Equal(t, FlagNo, state.WebSearchFlag)
	assert.Equal(t, 2, state.LoopStep)
}

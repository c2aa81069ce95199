package agent

import (
	"context"
	"fmt"
	"strings"
)

// Node and route names. The engine's transition table is keyed on these.
const (
	nodeWebSearch      = "websearch"
	nodeRetrieve       = "retrieve"
	nodeGradeDocuments = "grade_documents"
	nodeGenerate       = "generate"
	nodeSimpleGenerate = "simple_generate"

	routeVectorstore = "vectorstore"
	routeWebSearch   = "websearch"
	routeGenerate    = "generate"
)

// Outcomes of the generation grading decision.
const (
	decisionUseful       = "useful"
	decisionNotUseful    = "not useful"
	decisionNotSupported = "not supported"
	decisionMaxRetries   = "max retries"
)

// retrievalTopK is the number of documents fetched per similarity search.
const retrievalTopK = 3

func formatDocuments(docs []Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Content
	}
	return strings.Join(parts, "\n\n")
}

// routeQuestion decides the entry route for a turn. A datasource outside the
// three known routes is unrecoverable; there is no fourth branch.
func (e *Engine) routeQuestion(ctx context.Context, state *WorkingState) (string, error) {
	e.logger.Printf("[ROUTE] Routing question for chat %s", state.ChatID)

	source, err := e.completion.Classify(ctx, routerInstructions, routingContext(state.Question, state.ChatHistory), "datasource")
	if err != nil {
		return "", err
	}

	switch source {
	case routeWebSearch, routeVectorstore, routeGenerate:
		e.logger.Printf("[ROUTE] Datasource: %s", source)
		return source, nil
	default:
		return "", fmt.Errorf("%w: datasource %q", ErrUnroutableQuestion, source)
	}
}

// retrieve replaces the document set with the top-k similarity matches.
func (e *Engine) retrieve(ctx context.Context, state *WorkingState) (StateUpdate, error) {
	e.logger.Printf("[RETRIEVE] Similarity search for chat %s", state.ChatID)

	docs, err := e.retrieval.SimilaritySearch(ctx, state.Question, retrievalTopK)
	if err != nil {
		return StateUpdate{}, err
	}

	e.logger.Printf("[RETRIEVE] Got %d documents", len(docs))
	return StateUpdate{Documents: &docs}, nil
}

// gradeDocuments filters the documents, keeping only those graded relevant.
// Any rejection raises the web-search flag. Filtering preserves order.
func (e *Engine) gradeDocuments(ctx context.Context, state *WorkingState) (StateUpdate, error) {
	e.logger.Printf("[GRADE] Checking relevance of %d documents", len(state.Documents))

	grading := gradingContext(state.Question, state.ChatHistory)

	filtered := make([]Document, 0, len(state.Documents))
	flag := FlagNo
	for _, doc := range state.Documents {
		prompt := fmt.Sprintf(docGraderPrompt, doc.Content, grading)
		grade, err := e.completion.Classify(ctx, docGraderInstructions, prompt, "binary_score")
		if err != nil {
			return StateUpdate{}, err
		}

		if strings.EqualFold(grade, "yes") {
			e.logger.Printf("[GRADE] Document relevant")
			filtered = append(filtered, doc)
		} else {
			e.logger.Printf("[GRADE] Document not relevant")
			flag = FlagYes
		}
	}

	return StateUpdate{Documents: &filtered, WebSearchFlag: &flag}, nil
}

// decideToGenerate is a pure function of the web-search flag.
func decideToGenerate(state *WorkingState) string {
	if state.WebSearchFlag == FlagYes {
		return nodeWebSearch
	}
	return nodeGenerate
}

// webSearch appends one synthesized web-search document to the existing set.
// When recent history contains human messages, the search query is first
// reformulated from that context.
func (e *Engine) webSearch(ctx context.Context, state *WorkingState) (StateUpdate, error) {
	query := state.Question

	var humanParts []string
	for _, msg := range LastN(state.ChatHistory, recentWindow) {
		if msg.Role == RoleHuman {
			humanParts = append(humanParts, msg.Content)
		}
	}
	if len(humanParts) > 0 {
		prompt := fmt.Sprintf(searchQueryPrompt, strings.Join(humanParts, "\n"), state.Question)
		improved, err := e.completion.Complete(ctx, prompt)
		if err != nil {
			return StateUpdate{}, err
		}
		query = strings.TrimSpace(improved)
		e.logger.Printf("[WEBSEARCH] Reformulated query: %s", query)
	}

	results, err := e.retrieval.WebSearch(ctx, query)
	if err != nil {
		return StateUpdate{}, err
	}

	docs := append(append([]Document{}, state.Documents...), results...)
	e.logger.Printf("[WEBSEARCH] Appended %d web documents (total %d)", len(results), len(docs))
	return StateUpdate{Documents: &docs}, nil
}

// generate produces an answer grounded in the accumulated documents. It
// appends the question/answer pair to a copy of the history and counts one
// generation attempt.
func (e *Engine) generate(ctx context.Context, state *WorkingState) (StateUpdate, error) {
	e.logger.Printf("[GENERATE] RAG generation, attempt %d", state.LoopStep+1)

	prompt := fmt.Sprintf(ragPrompt, formatDocuments(state.Documents), state.Question, RenderHistory(state.ChatHistory))
	answer, err := e.completion.Complete(ctx, prompt)
	if err != nil {
		return StateUpdate{}, err
	}

	return generationUpdate(state, answer), nil
}

// simpleGenerate answers without documents; it exists for the direct route
// where no evidence is gathered.
func (e *Engine) simpleGenerate(ctx context.Context, state *WorkingState) (StateUpdate, error) {
	e.logger.Printf("[GENERATE] Direct generation")

	prompt := fmt.Sprintf(simplePrompt, state.Question, RenderHistory(state.ChatHistory))
	answer, err := e.completion.Complete(ctx, prompt)
	if err != nil {
		return StateUpdate{}, err
	}

	return generationUpdate(state, answer), nil
}

func generationUpdate(state *WorkingState, answer string) StateUpdate {
	history := append(append([]ChatMessage{}, state.ChatHistory...),
		ChatMessage{Role: RoleHuman, Content: state.Question},
		ChatMessage{Role: RoleAssistant, Content: answer},
	)
	loopStep := state.LoopStep + 1

	return StateUpdate{
		Generation:  &answer,
		LoopStep:    &loopStep,
		ChatHistory: &history,
	}
}

// gradeGeneration is the two-stage self-check. An ungrounded answer retries
// generation against the same evidence; a grounded but unhelpful answer
// escalates to web search to broaden the evidence pool. Either path is cut
// off once the retry budget is spent.
func (e *Engine) gradeGeneration(ctx context.Context, state *WorkingState) (string, error) {
	e.logger.Printf("[SELFCHECK] Hallucination check")

	prompt := fmt.Sprintf(hallucinationGraderPrompt, formatDocuments(state.Documents), state.Generation)
	grounded, err := e.completion.Classify(ctx, hallucinationGraderInstructions, prompt, "binary_score")
	if err != nil {
		return "", err
	}

	if !strings.EqualFold(grounded, "yes") {
		if state.LoopStep <= state.MaxRetries {
			e.logger.Printf("[SELFCHECK] Not grounded, retrying generation")
			return decisionNotSupported, nil
		}
		e.logger.Printf("[SELFCHECK] Not grounded, retry budget spent")
		return decisionMaxRetries, nil
	}

	e.logger.Printf("[SELFCHECK] Grounded, checking answer quality")

	grading := answerGradingContext(state.Question, state.ChatHistory)
	prompt = fmt.Sprintf(answerGraderPrompt, grading, state.Generation)
	useful, err := e.completion.Classify(ctx, answerGraderInstructions, prompt, "binary_score")
	if err != nil {
		return "", err
	}

	switch {
	case strings.EqualFold(useful, "yes"):
		e.logger.Printf("[SELFCHECK] Answer addresses the question")
		return decisionUseful, nil
	case state.LoopStep <= state.MaxRetries:
		e.logger.Printf("[SELFCHECK] Answer does not address the question, widening search")
		return decisionNotUseful, nil
	default:
		e.logger.Printf("[SELFCHECK] Retry budget spent")
		return decisionMaxRetries, nil
	}
}

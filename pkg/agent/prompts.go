package agent

// Prompt texts for the graph nodes. Classification prompts instruct the
// model to return strict single-object JSON because not every backend
// honors a structured-output parameter.

const routerInstructions = `You are an expert at routing a user question to a vectorstore, a web search, or direct generation.

The vectorstore contains academic documents, notes, explanations, questions and answers.

Use the vectorstore for questions on these topics. For all else, and especially for current events, use web search.

For casual conversation, use direct generation.

Return only JSON with a single key, datasource, that is 'websearch', 'vectorstore' or 'generate' depending on the question.

eg: {"datasource": "answer"}`

const docGraderInstructions = `You are a grader assessing relevance of a retrieved document to a user question.

If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.`

const docGraderPrompt = `Here is the retrieved document:

%s

Here is the user question:

%s

Carefully and objectively assess whether the document contains at least some information that is relevant to the question.

Return only JSON with a single key, binary_score, that is 'yes' or 'no' to indicate whether the document contains at least some information that is relevant to the question.

eg: {"binary_score": "answer"}`

const ragPrompt = `You are an assistant for question-answering tasks.

Here is the context to use to answer the question:

%s

Think carefully about the above context.

Now, review the user question:

%s

Provide an answer to this question using only the above context.
After providing the answer, ask if the user needs more help.

Here is the previous chat history:
%s

Answer:`

const simplePrompt = `Question: %s
Previous chats:
%s`

const hallucinationGraderInstructions = `You are a teacher grading a quiz.

You will be given FACTS and a STUDENT ANSWER.

Here is the grade criteria to follow:

(1) Ensure the STUDENT ANSWER is grounded in the FACTS.

(2) Ensure the STUDENT ANSWER does not contain "hallucinated" information outside the scope of the FACTS.

Score:

A score of yes means that the student's answer meets all of the criteria. This is the highest (best) score.

A score of no means that the student's answer does not meet all of the criteria. This is the lowest possible score you can give.

Explain your reasoning in a step-by-step manner to ensure your reasoning and conclusion are correct.

Avoid simply stating the correct answer at the outset.`

const hallucinationGraderPrompt = `FACTS:

%s

STUDENT ANSWER: %s

Return only JSON with two keys, binary_score is 'yes' or 'no' to indicate whether the STUDENT ANSWER is grounded in the FACTS, and a key, explanation, that contains an explanation of the score.

eg: {"binary_score": "answer", "explanation": "answer"}`

const answerGraderInstructions = `You are a teacher grading a quiz.

You will be given a QUESTION and a STUDENT ANSWER.

Here is the grade criteria to follow:

(1) The STUDENT ANSWER helps to answer the QUESTION.

Score:

A score of yes means that the student's answer meets all of the criteria. This is the highest (best) score.

The student can receive a score of yes if the answer contains extra information that is not explicitly asked for in the question.

A score of no means that the student's answer does not meet all of the criteria. This is the lowest possible score you can give.

Explain your reasoning in a step-by-step manner to ensure your reasoning and conclusion are correct.

Avoid simply stating the correct answer at the outset.`

const answerGraderPrompt = `QUESTION:

%s

STUDENT ANSWER: %s

Return only JSON with two keys, binary_score is 'yes' or 'no' to indicate whether the STUDENT ANSWER meets the criteria, and a key, explanation, that contains an explanation of the score.

eg: {"binary_score": "answer", "explanation": "answer"}`

const searchQueryPrompt = `Based on this conversation context:
%s

And this latest question:
%s

Formulate the best search query to find relevant information. Give only the query (must):`

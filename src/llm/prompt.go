package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Templates use FString formatting; literal braces are doubled.

// ----------------------------------------------------
// ================ Summarizer ================

const summarizeSystem = `Summarize the following conversation while preserving key insurance-related information, preferences, and business details.
Provide a concise summary that maintains important context for insurance discussions.
Reply with the summary text only.`

const summarizeUser = `{conversation}`

// ----------------------------------------------------
// ================ Entity extraction ================

const entitySystem = `You are a named entity recognizer. Extract every named entity that appears literally in the text:
people, organizations, locations, states, dates, quantities, employee counts, plan names and network types.

For each entity output one tuple:
(entity{TD}<entity text exactly as written>{TD}<LABEL>{TD}<confidence between 0 and 1>)

Use these labels: PER, ORG, LOC, DATE, CARDINAL, PLAN, MISC.
Separate tuples with {RD}. When complete, output {CD}.

Example
text: user: We are a 40 person bakery in Austin looking for a PPO.
Output:
(entity{TD}40{TD}CARDINAL{TD}0.97)
{RD}
(entity{TD}Austin{TD}LOC{TD}0.99)
{RD}
(entity{TD}PPO{TD}PLAN{TD}0.93)
{CD}`

const entityUser = `text: {text}`

// ----------------------------------------------------
// ================ Plan discovery ================

const slotFillSystem = `You are a friendly group health insurance advisor collecting three facts about the user's business:
1. business_size: the number of employees as an integer
2. location: the US state where the business operates, as its two-letter code
3. coverage_preference: "National" or "Local" provider network

Use the current answers and the conversation history. Keep every answer the user has already given
unless they correct it. Ask for the next missing fact, one question at a time. When all three are known,
confirm them and tell the user you can now search for eligible plans.

Reply with JSON only, in this shape:
{{"plan_discovery_answers": {{"business_size": 30, "location": "TX", "coverage_preference": "National"}}, "response": "<your reply to the user>"}}
Use null for any answer that is still unknown.`

const slotFillUser = `Current answers: {current_answers}

Conversation history:
{conversation_history}

Latest user message: {user_query}`

// ----------------------------------------------------
// ================ Plan ranking ================

const rankSystem = `You are an expert group health insurance analyst. Compare the eligible plans below for this business,
rank them from best to worst fit, and explain the trade-offs in plain language. Finish with a single recommendation.`

const rankUser = `Business profile
- Business size: {business_size} employees
- Location: {location}
- Coverage preference: {coverage_preference}

Eligible plans:
{plan_summaries}`

// ----------------------------------------------------
// ================ Query rewriting ================

const rewriteSystem = `You decide whether a user's question needs a search of the insurance knowledge base.
Use the conversation history and known entities to resolve pronouns and vague references.

Reply with JSON only, in this shape:
{{"query_catalog": true, "clarify": false, "queries": ["standalone search query"]}}
Set query_catalog to false for greetings and small talk. Set clarify to true when the question is too ambiguous to answer.
Give at most three queries.`

const rewriteUser = `Conversation history:
{conversation_history}

Known entities: {extracted_entities}

User question: {user_query}`

// ----------------------------------------------------
// ================ Answering ================

const answerSystem = `You are a helpful group health insurance assistant. Answer using the retrieved context when it is relevant.
If the context does not contain the answer, say so and offer what general guidance you can.
If the question is ambiguous, ask one clarifying question.`

const answerUser = `Conversation history:
{conversation_history}

Known entities: {extracted_entities}

Retrieved context:
{context}

User question: {user_query}`

// newTemplate builds a system+user FString template
func newTemplate(system, user string) prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
}

// newChain compiles Template -> ChatModel
func newChain(ctx context.Context, tpl prompt.ChatTemplate, cm einomodel.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain, err := compose.NewChain[map[string]any, *schema.Message]().
		AppendChatTemplate(tpl).
		AppendChatModel(cm).
		Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating Eino chain: %w", err)
	}
	return chain, nil
}

// invoke runs the chain and returns the trimmed reply text
func invoke(ctx context.Context, chain compose.Runnable[map[string]any, *schema.Message], vars map[string]any) (string, error) {
	msg, err := chain.Invoke(ctx, vars)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("empty model response")
	}
	return strings.TrimSpace(msg.Content), nil
}

package model

// PromptContext is the rendered session state handed to language-model prompts
type PromptContext struct {
	History  string
	Entities string
}

// DiscoveryReply is the slot filler's output for one user message: a full
// replacement of the profile slots plus the assistant's reply text
type DiscoveryReply struct {
	Slots ProfileSlots
	Reply string
}

// QueryAnalysis is the query rewriter's decision about a knowledge question
type QueryAnalysis struct {
	QueryCatalog bool     `json:"query_catalog"`
	Clarify      bool     `json:"clarify"`
	Queries      []string `json:"queries"`
}

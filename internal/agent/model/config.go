package model

// ================ Config ================

// ConversationConfig bounds how much session state feeds back into prompts.
type ConversationConfig struct {
	// TTL of session keys; "0" keeps sessions until an explicit reset.
	TTL string `envconfig:"SESSION_TTL" default:"0"`
	// HistoryWindow is the bounded suffix of turns used as prompt context.
	HistoryWindow int `envconfig:"CONVERSATION_HISTORY_WINDOW" default:"6"`
	// RetrievalTopK is how many knowledge passages ground a FAQ answer.
	RetrievalTopK int `envconfig:"RETRIEVAL_TOP_K" default:"3"`
}

// RouterModelConfig drives the single-shot classification calls (routing and
// contact-method preference). Low temperature on purpose: labels, not prose.
type RouterModelConfig struct {
	Model       string  `envconfig:"ROUTER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ROUTER_MAX_TOKENS" default:"100"`
	Temperature float32 `envconfig:"ROUTER_TEMPERATURE" default:"0.1"`
}

// ResponseModelConfig drives all generative calls (answers, follow-ups,
// summaries, confirmations).
type ResponseModelConfig struct {
	Model       string  `envconfig:"RESPONSE_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"RESPONSE_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"RESPONSE_TEMPERATURE" default:"0.4"`
}

package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by one LLM request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta describes one LLM-backed step, such as extracting a vegetable
// from a clipped page.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// Empty reports whether the call consumed no tokens.
func (m AgentMeta) Empty() bool {
	return m.Usage.PromptTokens == 0 && m.Usage.CompletionTokens == 0
}

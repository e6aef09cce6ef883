package detect

// TokenCounter approximates the token count of a piece of text. The exact
// tokenizer is a provider concern; detection only needs a rough count for
// limit guardrails.
type TokenCounter interface {
	CountTokens(text string) int
}

// HeuristicTokenCounter estimates roughly four characters per token, which
// tracks common BPE tokenizers closely enough for limit enforcement.
type HeuristicTokenCounter struct{}

// CountTokens implements TokenCounter.
func (HeuristicTokenCounter) CountTokens(text string) int {
	return len(text) / 4
}

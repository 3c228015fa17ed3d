package format

// TokenUsage is the normalized token accounting attached to the first
// ResponseEntry of an assistant turn.
type TokenUsage struct {
	InputTokens         int64  `json:"input_tokens"`
	OutputTokens        int64  `json:"output_tokens"`
	CacheReadTokens     *int64 `json:"cache_read_tokens,omitempty"`
	CacheCreationTokens *int64 `json:"cache_creation_tokens,omitempty"`
}

// ResponseEntry is agent-authored output text.
type ResponseEntry struct {
	Common
	Content    string      `json:"content"`
	Model      string      `json:"model,omitempty"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
	Truncated  *bool       `json:"truncated,omitempty"`
}

var responseKnownKeys = []string{"id", "ts", "type", "content", "model", "token_usage", "truncated"}

func (e *ResponseEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeResponse
	type shadow ResponseEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *ResponseEntry) UnmarshalJSON(data []byte) error {
	type shadow ResponseEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, responseKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

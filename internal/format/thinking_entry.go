package format

// ThinkingEntry carries an agent's reasoning trace, optionally collapsed
// or truncated for display.
type ThinkingEntry struct {
	Common
	Content       string `json:"content"`
	Collapsed     *bool  `json:"collapsed,omitempty"`
	Truncated     *bool  `json:"truncated,omitempty"`
	OriginalBytes *int64 `json:"original_bytes,omitempty"`
	SubagentID    string `json:"subagent_id,omitempty"`
}

var thinkingKnownKeys = []string{"id", "ts", "type", "content", "collapsed", "truncated", "original_bytes", "subagent_id"}

func (e *ThinkingEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeThinking
	type shadow ThinkingEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *ThinkingEntry) UnmarshalJSON(data []byte) error {
	type shadow ThinkingEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, thinkingKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

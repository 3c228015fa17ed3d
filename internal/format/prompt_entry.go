package format

// Attachment describes a file or blob attached to a prompt.
type Attachment struct {
	Name      string `json:"name"`
	MediaType string `json:"media_type,omitempty"`
	URI       string `json:"uri,omitempty"`
}

// PromptEntry is a user-authored turn.
type PromptEntry struct {
	Common
	Content     string       `json:"content"`
	SubagentID  string       `json:"subagent_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

var promptKnownKeys = []string{"id", "ts", "type", "content", "subagent_id", "attachments"}

func (e *PromptEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypePrompt
	type shadow PromptEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *PromptEntry) UnmarshalJSON(data []byte) error {
	type shadow PromptEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, promptKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

package format

import (
	"encoding/json"
	"fmt"
)

// ToolCallEntry records an agent invoking a tool with opaque structured
// input. Its ID is the correlation anchor for a later ToolResultEntry.
type ToolCallEntry struct {
	Common
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

var toolCallKnownKeys = []string{"id", "ts", "type", "tool", "input"}

func (e *ToolCallEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeToolCall
	type shadow ToolCallEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *ToolCallEntry) UnmarshalJSON(data []byte) error {
	type shadow ToolCallEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, toolCallKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

// BinaryContent is the structured alternative to plain text output,
// used when a payload is not valid UTF-8 or is otherwise binary.
type BinaryContent struct {
	MediaType string `json:"media_type"`
	Encoding  string `json:"encoding"`
	Data      string `json:"data"`
	SizeBytes *int64 `json:"size_bytes,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Truncated *bool  `json:"truncated,omitempty"`
}

// ToolOutput is either plain text or a BinaryContent payload. It
// unmarshals by inspecting shape: an object with "encoding" is binary;
// a JSON string is text.
type ToolOutput struct {
	Text   string
	Binary *BinaryContent
}

func (o ToolOutput) IsBinary() bool { return o.Binary != nil }

func (o ToolOutput) MarshalJSON() ([]byte, error) {
	if o.Binary != nil {
		return json.Marshal(o.Binary)
	}
	return json.Marshal(o.Text)
}

func (o *ToolOutput) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		o.Text = asString
		o.Binary = nil
		return nil
	}
	var bin BinaryContent
	if err := json.Unmarshal(data, &bin); err != nil {
		return fmt.Errorf("tool_result.output is neither text nor binary: %w", err)
	}
	o.Binary = &bin
	return nil
}

// ToolResultEntry answers a ToolCallEntry by CallID. Exactly one of
// Output / Error is present, per the format's ToolResultAmbiguous
// invariant.
type ToolResultEntry struct {
	Common
	CallID string      `json:"call_id"`
	Output *ToolOutput `json:"output,omitempty"`
	Error  *string     `json:"error,omitempty"`
}

var toolResultKnownKeys = []string{"id", "ts", "type", "call_id", "output", "error"}

func (e *ToolResultEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeToolResult
	type shadow ToolResultEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *ToolResultEntry) UnmarshalJSON(data []byte) error {
	type shadow ToolResultEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, toolResultKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

// Package format implements the Spool entry taxonomy: the tagged-union
// Entry types, their JSON encoding with unknown-field preservation, and
// the session container that holds an ordered sequence of them.
package format

import (
	"encoding/json"
	"fmt"
)

// Entry tags, per the format's type discriminator.
const (
	TypeSession         = "session"
	TypePrompt          = "prompt"
	TypeThinking        = "thinking"
	TypeToolCall        = "tool_call"
	TypeToolResult      = "tool_result"
	TypeResponse        = "response"
	TypeError           = "error"
	TypeSubagentStart   = "subagent_start"
	TypeSubagentEnd     = "subagent_end"
	TypeAnnotation      = "annotation"
	TypeRedactionMarker = "redaction_marker"
)

// Entry is implemented by every concrete entry variant, including Unknown
// for unrecognized or x_-prefixed types.
type Entry interface {
	EntryID() string
	Timestamp() int64
	EntryType() string
	Extras() map[string]json.RawMessage
	SetTimestamp(ts int64)
}

// Common holds the three fields present on every entry plus the extras
// bag for unknown fields, mirroring the original format's "extra:
// HashMap<String, serde_json::Value>" flatten convention.
type Common struct {
	ID    string                     `json:"id"`
	Ts    int64                      `json:"ts"`
	Type  string                     `json:"type"`
	Extra map[string]json.RawMessage `json:"-"`
}

func (c *Common) EntryID() string                    { return c.ID }
func (c *Common) Timestamp() int64                   { return c.Ts }
func (c *Common) EntryType() string                  { return c.Type }
func (c *Common) Extras() map[string]json.RawMessage { return c.Extra }
func (c *Common) SetTimestamp(ts int64)              { c.Ts = ts }

// marshalWithExtras marshals known, decodes it back into a generic map,
// merges in any extras not already present as a known field, and
// marshals the merged map. This is how every concrete entry type
// re-merges its extras bag on write without hand-rolling per-field
// merge logic.
func marshalWithExtras(known any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("marshal known fields: %w", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, fmt.Errorf("remarshal known fields: %w", err)
	}
	for k, v := range extra {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// unmarshalWithExtras unmarshals data into known (a pointer to a struct
// with json tags) and returns every field of data not named in knownKeys
// as the extras bag.
func unmarshalWithExtras(data []byte, known any, knownKeys []string) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, known); err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	for _, k := range knownKeys {
		delete(m, k)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}

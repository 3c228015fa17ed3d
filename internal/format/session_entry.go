package format

import "encoding/json"

// EndedState describes how a session concluded, mirroring the
// adapters' final aggregation pass.
type EndedState string

const (
	EndedCompleted EndedState = "completed"
	EndedUnknown   EndedState = "unknown"
)

// TrimmedMetadata records the original extent of a session before a
// trim operation narrowed it.
type TrimmedMetadata struct {
	OriginalDurationMs int64    `json:"original_duration_ms"`
	KeptRange          [2]int64 `json:"kept_range"`
}

// SessionEntry is the distinguished header: exactly one per file, at
// index 0, with Ts always 0.
type SessionEntry struct {
	Common
	Version       string           `json:"version"`
	Agent         string           `json:"agent"`
	RecordedAt    string           `json:"recorded_at"`
	AgentVersion  string           `json:"agent_version,omitempty"`
	Title         string           `json:"title,omitempty"`
	Author        string           `json:"author,omitempty"`
	Tags          []string         `json:"tags,omitempty"`
	DurationMs    *int64           `json:"duration_ms,omitempty"`
	EntryCount    *int             `json:"entry_count,omitempty"`
	ToolsUsed     []string         `json:"tools_used,omitempty"`
	FilesModified []string         `json:"files_modified,omitempty"`
	FirstPrompt   string           `json:"first_prompt,omitempty"`
	SchemaURL     string           `json:"schema_url,omitempty"`
	Trimmed       *TrimmedMetadata `json:"trimmed,omitempty"`
	Ended         EndedState       `json:"ended,omitempty"`
}

var sessionKnownKeys = []string{
	"id", "ts", "type", "version", "agent", "recorded_at", "agent_version",
	"title", "author", "tags", "duration_ms", "entry_count", "tools_used",
	"files_modified", "first_prompt", "schema_url", "trimmed", "ended",
}

func (e *SessionEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeSession
	type shadow SessionEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *SessionEntry) UnmarshalJSON(data []byte) error {
	type shadow SessionEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, sessionKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

var _ json.Marshaler = (*SessionEntry)(nil)
var _ json.Unmarshaler = (*SessionEntry)(nil)

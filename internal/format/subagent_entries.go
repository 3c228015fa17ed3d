package format

// SubagentStatus is the terminal state of a delegated subagent run.
type SubagentStatus string

const (
	SubagentCompleted SubagentStatus = "completed"
	SubagentFailed    SubagentStatus = "failed"
	SubagentCancelled SubagentStatus = "cancelled"
)

// SubagentStartEntry marks the beginning of a delegated nested agent
// instance.
type SubagentStartEntry struct {
	Common
	Agent            string `json:"agent"`
	Context          string `json:"context,omitempty"`
	ParentSubagentID string `json:"parent_subagent_id,omitempty"`
}

var subagentStartKnownKeys = []string{"id", "ts", "type", "agent", "context", "parent_subagent_id"}

func (e *SubagentStartEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeSubagentStart
	type shadow SubagentStartEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *SubagentStartEntry) UnmarshalJSON(data []byte) error {
	type shadow SubagentStartEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, subagentStartKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

// SubagentEndEntry closes a SubagentStartEntry by StartID.
type SubagentEndEntry struct {
	Common
	StartID string         `json:"start_id"`
	Summary string         `json:"summary,omitempty"`
	Status  SubagentStatus `json:"status,omitempty"`
}

var subagentEndKnownKeys = []string{"id", "ts", "type", "start_id", "summary", "status"}

func (e *SubagentEndEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeSubagentEnd
	type shadow SubagentEndEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *SubagentEndEntry) UnmarshalJSON(data []byte) error {
	type shadow SubagentEndEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, subagentEndKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

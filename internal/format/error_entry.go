package format

// ErrorCode is an open string enum: a handful of well-known values plus
// any agent-defined code, mirroring the original format's
// Custom(String) fallback variant.
type ErrorCode string

const (
	ErrorCodeToolFailure   ErrorCode = "tool_failure"
	ErrorCodeTimeout       ErrorCode = "timeout"
	ErrorCodeRateLimit     ErrorCode = "rate_limit"
	ErrorCodeContextLength ErrorCode = "context_length"
	ErrorCodeUnknown       ErrorCode = "unknown"
)

// ErrorEntry records an agent- or tool-level failure.
type ErrorEntry struct {
	Common
	Code        ErrorCode `json:"code"`
	Message     string    `json:"message"`
	Recoverable *bool     `json:"recoverable,omitempty"`
	Details     string    `json:"details,omitempty"`
}

var errorKnownKeys = []string{"id", "ts", "type", "code", "message", "recoverable", "details"}

func (e *ErrorEntry) MarshalJSON() ([]byte, error) {
	e.Type = TypeError
	type shadow ErrorEntry
	return marshalWithExtras((*shadow)(e), e.Extra)
}

func (e *ErrorEntry) UnmarshalJSON(data []byte) error {
	type shadow ErrorEntry
	s := (*shadow)(e)
	extra, err := unmarshalWithExtras(data, s, errorKnownKeys)
	if err != nil {
		return err
	}
	e.Extra = extra
	return nil
}

package adapter

import (
	"fmt"

	"github.com/asbjornb/spool/internal/format"
)

// Named adapters in sniff order: the first whose Sniff returns true on
// the first non-blank line handles the bytes.
var registry = []struct {
	name string
	impl Adapter
}{
	{"codex", Codex{}},
	{"claude", Claude{}},
}

// ErrUnknownVendorShape is returned when no registered adapter
// recognizes the input.
var ErrUnknownVendorShape = fmt.Errorf("spool: no adapter recognizes this log shape")

// DetectAndConvert finds the first line of data, sniffs it against every
// registered adapter in order, and converts with the first match.
func DetectAndConvert(data []byte) (vendor string, session *format.Session, err error) {
	lines := splitLines(data)
	if len(lines) == 0 {
		return "", nil, ErrUnknownVendorShape
	}
	first := lines[0]
	for _, a := range registry {
		if a.impl.Sniff(first) {
			s, convErr := a.impl.Convert(data)
			if convErr != nil {
				return a.name, nil, convErr
			}
			return a.name, s, nil
		}
	}
	return "", nil, ErrUnknownVendorShape
}

package format

import (
	"fmt"
	"strings"
)

// ViolationKind enumerates every structural problem the Validator can
// report.
type ViolationKind string

const (
	MissingHeader           ViolationKind = "missing_header"
	HeaderNotFirst          ViolationKind = "header_not_first"
	HeaderTsNonZero         ViolationKind = "header_ts_non_zero"
	DuplicateID             ViolationKind = "duplicate_id"
	DanglingToolResult      ViolationKind = "dangling_tool_result"
	DanglingSubagentEnd     ViolationKind = "dangling_subagent_end"
	OrphanedMarker          ViolationKind = "orphaned_marker"
	ToolResultAmbiguous     ViolationKind = "tool_result_ambiguous"
	NegativeTimestamp       ViolationKind = "negative_timestamp"
	UnsupportedMajorVersion ViolationKind = "unsupported_major_version"
)

// warningKinds are never fatal: the file remains usable. This set
// intentionally includes DuplicateID, per the design note resolving it
// as a structural warning rather than a hard error (an explicit
// deviation from the enumeration order elsewhere in this file, and from
// the original Rust validator, which treats duplicate ids and dangling
// references alike as hard errors).
var warningKinds = map[ViolationKind]bool{
	DanglingToolResult:  true,
	DanglingSubagentEnd: true,
	OrphanedMarker:      true,
	DuplicateID:         true,
}

// Violation is one structural finding against a Session.
type Violation struct {
	Kind       ViolationKind
	EntryIndex int // -1 if not tied to a specific entry
	Message    string
}

func (v Violation) IsWarning() bool { return warningKinds[v.Kind] }

func (v Violation) String() string {
	if v.EntryIndex >= 0 {
		return fmt.Sprintf("%s (entry %d): %s", v.Kind, v.EntryIndex, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

// ValidationOptions toggles individual checks; all are on by default.
type ValidationOptions struct {
	CheckDuplicateIDs         bool
	CheckToolReferences       bool
	CheckSubagentReferences   bool
	CheckAnnotationReferences bool
	WarnOutOfOrderTimestamps  bool
}

// DefaultValidationOptions enables every check.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CheckDuplicateIDs:         true,
		CheckToolReferences:       true,
		CheckSubagentReferences:   true,
		CheckAnnotationReferences: true,
		WarnOutOfOrderTimestamps:  true,
	}
}

// ValidationResult splits findings into hard errors and warnings.
type ValidationResult struct {
	Errors   []Violation
	Warnings []Violation
}

func (r ValidationResult) IsValid() bool { return len(r.Errors) == 0 }

func (r ValidationResult) All() []Violation {
	out := make([]Violation, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	return out
}

// Validate enforces the format's structural invariants against a fully
// loaded Session, accumulating every violation rather than stopping at
// the first.
func Validate(s *Session, opts ValidationOptions) ValidationResult {
	var result ValidationResult
	record := func(v Violation) {
		if v.IsWarning() {
			result.Warnings = append(result.Warnings, v)
		} else {
			result.Errors = append(result.Errors, v)
		}
	}

	if len(s.Entries) == 0 {
		record(Violation{Kind: MissingHeader, EntryIndex: -1, Message: "session has no entries"})
		return result
	}

	header, isHeader := s.Entries[0].(*SessionEntry)
	if !isHeader {
		record(Violation{Kind: MissingHeader, EntryIndex: -1, Message: "first entry is not a session header"})
	} else {
		if header.Ts != 0 {
			record(Violation{Kind: HeaderTsNonZero, EntryIndex: 0, Message: fmt.Sprintf("header ts = %d", header.Ts)})
		}
		if !strings.HasPrefix(header.Version, "1.") {
			record(Violation{Kind: UnsupportedMajorVersion, EntryIndex: 0, Message: fmt.Sprintf("version %q is not 1.x", header.Version)})
		}
	}
	for i, e := range s.Entries[1:] {
		if _, ok := e.(*SessionEntry); ok {
			record(Violation{Kind: HeaderNotFirst, EntryIndex: i + 1, Message: "additional session header after index 0"})
		}
	}

	seenIDs := map[string]bool{}
	toolCallIDs := map[string]bool{}
	subagentStartIDs := map[string]bool{}
	var lastTs int64 = -1
	haveLastTs := false

	for i, e := range s.Entries {
		id := e.EntryID()
		if opts.CheckDuplicateIDs && id != "" {
			if seenIDs[id] {
				record(Violation{Kind: DuplicateID, EntryIndex: i, Message: fmt.Sprintf("id %s appears more than once", id)})
			}
			seenIDs[id] = true
		}

		switch v := e.(type) {
		case *ToolCallEntry:
			toolCallIDs[v.ID] = true
		case *SubagentStartEntry:
			subagentStartIDs[v.ID] = true
		}

		if ts := e.Timestamp(); ts < 0 {
			record(Violation{Kind: NegativeTimestamp, EntryIndex: i, Message: fmt.Sprintf("ts = %d", ts)})
		}

		switch v := e.(type) {
		case *ToolResultEntry:
			if opts.CheckToolReferences && !toolCallIDs[v.CallID] {
				record(Violation{Kind: DanglingToolResult, EntryIndex: i, Message: fmt.Sprintf("call_id %s has no earlier tool_call", v.CallID)})
			}
			if (v.Output == nil) == (v.Error == nil) {
				record(Violation{Kind: ToolResultAmbiguous, EntryIndex: i, Message: "exactly one of output/error must be present"})
			}
		case *SubagentEndEntry:
			if opts.CheckSubagentReferences && !subagentStartIDs[v.StartID] {
				record(Violation{Kind: DanglingSubagentEnd, EntryIndex: i, Message: fmt.Sprintf("start_id %s has no earlier subagent_start", v.StartID)})
			}
		case *AnnotationEntry:
			if opts.CheckAnnotationReferences && !seenIDs[v.TargetID] {
				record(Violation{Kind: OrphanedMarker, EntryIndex: i, Message: fmt.Sprintf("annotation targets unknown entry %s", v.TargetID)})
			}
		case *RedactionMarkerEntry:
			if opts.CheckAnnotationReferences && !seenIDs[v.TargetID] {
				record(Violation{Kind: OrphanedMarker, EntryIndex: i, Message: fmt.Sprintf("redaction_marker targets unknown entry %s", v.TargetID)})
			}
		}

		if opts.WarnOutOfOrderTimestamps {
			ts := e.Timestamp()
			if haveLastTs && ts < lastTs {
				result.Warnings = append(result.Warnings, Violation{
					Kind:       "out_of_order_timestamp",
					EntryIndex: i,
					Message:    fmt.Sprintf("ts %d precedes previous entry's %d", ts, lastTs),
				})
			}
			lastTs = ts
			haveLastTs = true
		}
	}

	return result
}

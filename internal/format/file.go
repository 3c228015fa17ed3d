package format

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// UnparsedLine preserves a line the reader could not decode, in lenient
// mode, so that callers can inspect or re-emit it.
type UnparsedLine struct {
	LineNumber int
	Raw        string
	Err        error
}

// Session is the in-memory ordered sequence of entries for one file.
// In a well-formed session Entries[0] is the session header; Read does
// not enforce this (Validate reports MissingHeader / HeaderNotFirst).
type Session struct {
	Entries       []Entry
	UnparsedLines []UnparsedLine
}

// Header returns the session header entry, or nil if the session is
// empty or its first entry is not a session header (Read can return
// either kind of Session).
func (s *Session) Header() *SessionEntry {
	if len(s.Entries) == 0 {
		return nil
	}
	h, _ := s.Entries[0].(*SessionEntry)
	return h
}

// New creates a Session with the given header as its sole entry.
func New(header *SessionEntry) *Session {
	header.Ts = 0
	header.Type = TypeSession
	return &Session{Entries: []Entry{header}}
}

// AddEntry appends an entry to the end of the sequence.
func (s *Session) AddEntry(e Entry) {
	s.Entries = append(s.Entries, e)
}

// InsertAfter inserts e immediately after the entry at index i.
func (s *Session) InsertAfter(i int, e Entry) {
	s.Entries = append(s.Entries, nil)
	copy(s.Entries[i+2:], s.Entries[i+1:])
	s.Entries[i+1] = e
}

// EntriesOfType returns every entry of concrete type T, in sequence
// order.
func EntriesOfType[T Entry](s *Session) []T {
	var out []T
	for _, e := range s.Entries {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func (s *Session) Prompts() []*PromptEntry         { return EntriesOfType[*PromptEntry](s) }
func (s *Session) Responses() []*ResponseEntry     { return EntriesOfType[*ResponseEntry](s) }
func (s *Session) ToolCalls() []*ToolCallEntry     { return EntriesOfType[*ToolCallEntry](s) }
func (s *Session) ToolResults() []*ToolResultEntry { return EntriesOfType[*ToolResultEntry](s) }
func (s *Session) Errors() []*ErrorEntry           { return EntriesOfType[*ErrorEntry](s) }
func (s *Session) Annotations() []*AnnotationEntry { return EntriesOfType[*AnnotationEntry](s) }
func (s *Session) SubagentStarts() []*SubagentStartEntry {
	return EntriesOfType[*SubagentStartEntry](s)
}
func (s *Session) SubagentEnds() []*SubagentEndEntry { return EntriesOfType[*SubagentEndEntry](s) }

// ReadOptions controls reader leniency, a policy that must stay
// constant within one invocation per the format's reader contract.
type ReadOptions struct {
	// Strict aborts the whole read on the first MalformedLine or
	// SchemaViolation. The default (false) skips the offending line
	// with a diagnostic recorded in UnparsedLines.
	Strict bool
}

// Read parses a byte stream into a Session. It does not require
// Entries[0] to be a session header: a missing or misplaced header is
// a structural violation, not a decode failure, and is left for
// Validate to classify (MissingHeader, HeaderNotFirst).
func Read(r io.Reader, opts ReadOptions) (*Session, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("spool: read input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("spool: empty input")
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	session := &Session{}
	lineNo := 0
	for _, raw := range bytes.Split(data, []byte("\n")) {
		lineNo++
		line := bytes.TrimSuffix(raw, []byte("\r"))
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		entry, decodeErr := decodeEntry(line)
		if decodeErr != nil {
			if opts.Strict {
				return nil, fmt.Errorf("spool: line %d: %w", lineNo, decodeErr)
			}
			session.UnparsedLines = append(session.UnparsedLines, UnparsedLine{
				LineNumber: lineNo,
				Raw:        string(line),
				Err:        decodeErr,
			})
			continue
		}
		session.Entries = append(session.Entries, entry)
	}

	return session, nil
}

// Write serializes a Session back to a byte stream: one LF-terminated
// JSON object per entry, no BOM, no indentation, in sequence order.
func Write(w io.Writer, s *Session) error {
	bw := bufio.NewWriter(w)
	for _, e := range s.Entries {
		b, err := EncodeEntry(e)
		if err != nil {
			return fmt.Errorf("spool: encode entry %s: %w", e.EntryID(), err)
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DurationMs is the maximum ts across every entry, the session's
// recorded length.
func (s *Session) DurationMs() int64 {
	var max int64
	for _, e := range s.Entries {
		if ts := e.Timestamp(); ts > max {
			max = ts
		}
	}
	return max
}

// ToolsUsed returns the sorted, deduplicated set of tool names invoked
// in the session.
func (s *Session) ToolsUsed() []string {
	seen := map[string]struct{}{}
	for _, tc := range s.ToolCalls() {
		seen[tc.Tool] = struct{}{}
	}
	return sortedKeys(seen)
}

// Trim keeps the header and every entry with startMs <= ts <= endMs,
// records the original extent on the header, and recomputes aggregates.
func (s *Session) Trim(startMs, endMs int64) *Session {
	header := s.Header()
	if header == nil {
		return s
	}
	originalDuration := s.DurationMs()

	kept := make([]Entry, 0, len(s.Entries))
	for _, e := range s.Entries[1:] {
		ts := e.Timestamp()
		if ts >= startMs && ts <= endMs {
			kept = append(kept, e)
		}
	}

	newHeader := *header
	newHeader.Trimmed = &TrimmedMetadata{
		OriginalDurationMs: originalDuration,
		KeptRange:          [2]int64{startMs, endMs},
	}
	out := &Session{Entries: append([]Entry{&newHeader}, kept...)}
	Recompute(out)
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

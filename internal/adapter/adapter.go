// Package adapter converts vendor-native agent logs (Claude Code
// session transcripts, Codex session rollouts) into the Spool format,
// sharing one correlation algorithm and one files-modified extraction
// rule across both vendor shapes.
package adapter

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/asbjornb/spool/internal/format"
)

// Adapter is implemented by each vendor-specific converter.
type Adapter interface {
	// Sniff reports whether the first non-blank line of a vendor log
	// looks like this adapter's shape.
	Sniff(firstLine []byte) bool
	// Convert parses the full vendor log into a Session.
	Convert(data []byte) (*format.Session, error)
}

// ErrNoRecognizableLines is returned when an adapter cannot find even a
// single line it understands, and so cannot produce a header.
type ErrNoRecognizableLines struct{ Vendor string }

func (e *ErrNoRecognizableLines) Error() string {
	return "spool: " + e.Vendor + " adapter found no recognizable lines"
}

// correlator maps a vendor's own tool-use identifiers to the generated
// tool_call entry ids the adapter assigns, scoped to one conversion.
type correlator struct {
	toolCallID      map[string]string
	subagentStartID map[string]string
}

func newCorrelator() *correlator {
	return &correlator{
		toolCallID:      map[string]string{},
		subagentStartID: map[string]string{},
	}
}

// splitLines splits vendor bytes on LF, trims a trailing CR, and drops
// blank lines, mirroring the format codec's own line framing.
func splitLines(data []byte) [][]byte {
	var out [][]byte
	for _, raw := range bytesSplit(data, '\n') {
		line := bytesTrimCR(raw)
		if len(bytesTrimSpace(line)) == 0 {
			continue
		}
		out = append(out, line)
	}
	return out
}

func bytesSplit(data []byte, sep byte) [][]byte {
	var out [][]byte
	start := 0
	for i, b := range data {
		if b == sep {
			out = append(out, data[start:i])
			start = i + 1
		}
	}
	out = append(out, data[start:])
	return out
}

func bytesTrimCR(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1]
	}
	return line
}

func bytesTrimSpace(line []byte) []byte {
	return []byte(strings.TrimSpace(string(line)))
}

// truncateUTF8Safe truncates s to at most n bytes without splitting a
// multi-byte rune, matching the original adapter's byte-boundary-safe
// first_prompt truncation.
func truncateUTF8Safe(s string, n int) string {
	if len(s) <= n {
		return s
	}
	b := s[:n]
	for len(b) > 0 && !utf8.ValidString(b) {
		b = b[:len(b)-1]
	}
	return b
}

const firstPromptMaxBytes = 200

func computeFirstPrompt(s string) string {
	return truncateUTF8Safe(strings.TrimSpace(s), firstPromptMaxBytes)
}

const titleMaxBytes = 57

// deriveTitle derives a session's default title from its first
// non-synthetic user prompt: the prompt's first line, truncated to 57
// bytes at a UTF-8 boundary with a "..." suffix whenever that line
// exceeds 60 bytes.
func deriveTitle(s string) string {
	firstLine := strings.TrimSpace(s)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	if len(firstLine) > 60 {
		return truncateUTF8Safe(firstLine, titleMaxBytes) + "..."
	}
	return firstLine
}

// relMs computes the non-negative millisecond offset of t from start.
func relMs(start, t time.Time) int64 {
	if start.IsZero() || t.IsZero() {
		return 0
	}
	d := t.Sub(start).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

// parseArguments parses a vendor tool-arguments string as JSON if
// possible; otherwise it wraps the raw string as {"value": <string>},
// per the format spec (this differs from the original Rust adapter,
// which wraps an unparseable string bare; the spec's {value: ...}
// wrapping is authoritative here).
func parseArguments(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	wrapped, err := json.Marshal(map[string]string{"value": raw})
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return wrapped
}

// finalizeHeader sets the derived aggregate fields on a freshly
// converted session's header, the adapters' own aggregation pass
// (distinct from, but logically identical to, Recompute — adapters run
// it once at the end of conversion before any further mutation).
func finalizeHeader(session *format.Session, ended format.EndedState) {
	format.Recompute(session)
	session.Header().Ended = ended
}

// collectFilesModified merges the Write/Edit/NotebookEdit extraction
// already folded into Recompute with any extra paths an adapter found
// by its own vendor-specific means (e.g. Codex's apply_patch hunk
// scanning), returning the sorted union.
func collectFilesModified(session *format.Session, extra []string) {
	set := map[string]struct{}{}
	for _, f := range session.Header().FilesModified {
		set[f] = struct{}{}
	}
	for _, f := range extra {
		if f != "" {
			set[f] = struct{}{}
		}
	}
	if len(set) == 0 {
		return
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	session.Header().FilesModified = out
}

package format

import (
	"encoding/json"
	"sort"
	"strings"
)

// ExtractModifiedPath implements the files-modified extraction rule
// shared between adapters (at conversion time) and Recompute (after any
// mutation): given a tool name and its raw JSON input, return the file
// path it touched, if any.
func ExtractModifiedPath(tool string, input json.RawMessage) (string, bool) {
	switch strings.ToLower(tool) {
	case "write", "edit", "write_file", "edit_file":
		return stringField(input, "file_path", "path")
	case "notebookedit", "notebook_edit":
		return stringField(input, "notebook_path")
	default:
		return "", false
	}
}

func stringField(input json.RawMessage, keys ...string) (string, bool) {
	if len(input) == 0 {
		return "", false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(input, &m); err != nil {
		return "", false
	}
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s, true
		}
	}
	return "", false
}

// Recompute refreshes the header's derived fields (duration_ms,
// entry_count, tools_used, files_modified) from the current entry
// sequence. Called after trim, annotate, and apply_redactions.
func Recompute(s *Session) {
	header := s.Header()
	if header == nil {
		return
	}
	duration := s.DurationMs()
	count := len(s.Entries)
	header.DurationMs = &duration
	header.EntryCount = &count
	header.ToolsUsed = s.ToolsUsed()

	files := map[string]struct{}{}
	for _, tc := range s.ToolCalls() {
		if path, ok := ExtractModifiedPath(tc.Tool, tc.Input); ok {
			files[path] = struct{}{}
		}
	}
	if len(files) > 0 {
		out := make([]string, 0, len(files))
		for f := range files {
			out = append(out, f)
		}
		sort.Strings(out)
		header.FilesModified = out
	} else {
		header.FilesModified = nil
	}
}

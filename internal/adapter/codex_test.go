package adapter

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCodexBasicConversion(t *testing.T) {
	lines := []string{
		`{"timestamp":"2025-01-01T00:00:00Z","type":"session_meta","payload":{"cwd":"/repo","originator":"cli"}}`,
		`{"timestamp":"2025-01-01T00:00:01Z","type":"event_msg","payload":{"type":"user_message","message":"fix the bug"}}`,
		`{"timestamp":"2025-01-01T00:00:02Z","type":"event_msg","payload":{"type":"agent_reasoning","text":"thinking about it"}}`,
		`{"timestamp":"2025-01-01T00:00:03Z","type":"event_msg","payload":{"type":"agent_message","message":"fixed"}}`,
	}
	session, err := Codex{}.Convert([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(session.Prompts()) != 1 || session.Prompts()[0].Content != "fix the bug" {
		t.Fatalf("prompts = %+v", session.Prompts())
	}
	if len(session.Responses()) != 1 || session.Responses()[0].Content != "fixed" {
		t.Fatalf("responses = %+v", session.Responses())
	}
	if string(session.Header().Extra["x_cwd"]) != `"/repo"` {
		t.Fatalf("x_cwd = %s", session.Header().Extra["x_cwd"])
	}
}

func TestCodexToolCorrelationDropsUnmatchedOutput(t *testing.T) {
	lines := []string{
		`{"timestamp":"2025-01-01T00:00:00Z","type":"event_msg","payload":{"type":"user_message","message":"go"}}`,
		`{"timestamp":"2025-01-01T00:00:01Z","type":"response_item","payload":{"type":"function_call_output","call_id":"unknown","output":"x"}}`,
	}
	session, err := Codex{}.Convert([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(session.ToolResults()) != 0 {
		t.Fatalf("expected unmatched tool output to be dropped, got %d", len(session.ToolResults()))
	}
}

func TestCodexApplyPatchFilesModified(t *testing.T) {
	patch := "*** Begin Patch\n*** Update File: internal/foo.go\n*** Add File: internal/bar.go\n*** End Patch"
	lines := []string{
		`{"timestamp":"2025-01-01T00:00:00Z","type":"response_item","payload":{"type":"function_call","call_id":"c1","name":"apply_patch","arguments":` + mustQuote(patch) + `}}`,
	}
	session, err := Codex{}.Convert([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	files := session.Header().FilesModified
	if len(files) != 2 {
		t.Fatalf("files_modified = %v", files)
	}
}

func TestCodexWrapsUnparseableArgumentsAsValueObject(t *testing.T) {
	lines := []string{
		`{"timestamp":"2025-01-01T00:00:00Z","type":"response_item","payload":{"type":"function_call","call_id":"c1","name":"run","arguments":"not json"}}`,
	}
	session, err := Codex{}.Convert([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	calls := session.ToolCalls()
	if len(calls) != 1 {
		t.Fatalf("tool calls = %d", len(calls))
	}
	if !strings.Contains(string(calls[0].Input), `"value":"not json"`) {
		t.Fatalf("input = %s", calls[0].Input)
	}
}

func mustQuote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(b)
}

package adapter

import (
	"strings"
	"testing"

	"github.com/asbjornb/spool/internal/format"
)

func TestClaudeSubagentWrapping(t *testing.T) {
	lines := []string{
		`{"type":"assistant","timestamp":"2025-01-01T00:00:00Z","message":{"role":"assistant","model":"claude-3","content":[{"type":"tool_use","id":"tu_1","name":"Task","input":{"prompt":"go do it"}}]}}`,
		`{"type":"user","timestamp":"2025-01-01T00:00:05Z","message":{"role":"user","content":[{"type":"tool_result","tool_use_id":"tu_1","content":"done"}]}}`,
	}
	data := []byte(strings.Join(lines, "\n"))

	session, err := Claude{}.Convert(data)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	var order []string
	for _, e := range session.Entries[1:] {
		order = append(order, e.EntryType())
	}
	want := []string{format.TypeSubagentStart, format.TypeToolCall, format.TypeToolResult, format.TypeSubagentEnd}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}

	end := session.Entries[len(session.Entries)-1].(*format.SubagentEndEntry)
	if end.Status != format.SubagentCompleted {
		t.Fatalf("status = %s, want completed", end.Status)
	}
}

func TestClaudeStripsSystemTags(t *testing.T) {
	line := `{"type":"user","timestamp":"2025-01-01T00:00:00Z","message":{"role":"user","content":"<system-reminder>internal note</system-reminder>actual prompt"}}`
	session, err := Claude{}.Convert([]byte(line))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	prompts := session.Prompts()
	if len(prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(prompts))
	}
	if strings.Contains(prompts[0].Content, "system-reminder") {
		t.Fatalf("system tag not stripped: %q", prompts[0].Content)
	}
	if prompts[0].Content != "actual prompt" {
		t.Fatalf("content = %q", prompts[0].Content)
	}
}

func TestClaudeSyntheticCommandDropped(t *testing.T) {
	line := `{"type":"user","timestamp":"2025-01-01T00:00:00Z","message":{"role":"user","content":"<command-name>ls</command-name>"}}`
	session, err := Claude{}.Convert([]byte(line))
	if err == nil && len(session.Prompts()) != 0 {
		t.Fatalf("expected synthetic command line to be dropped, got %d prompts", len(session.Prompts()))
	}
}

func TestClaudeTokenUsageAttachedToResponse(t *testing.T) {
	line := `{"type":"assistant","timestamp":"2025-01-01T00:00:00Z","message":{"role":"assistant","model":"claude-3","content":[{"type":"text","text":"hi"}],"usage":{"input_tokens":10,"output_tokens":5}}}`
	session, err := Claude{}.Convert([]byte(line))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	responses := session.Responses()
	if len(responses) != 1 {
		t.Fatalf("responses = %d, want 1", len(responses))
	}
	if responses[0].TokenUsage == nil || responses[0].TokenUsage.InputTokens != 10 {
		t.Fatalf("token usage = %+v", responses[0].TokenUsage)
	}
}

func TestClaudeFilesModified(t *testing.T) {
	lines := []string{
		`{"type":"assistant","timestamp":"2025-01-01T00:00:00Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"tu_1","name":"Write","input":{"file_path":"a.go"}}]}}`,
		`{"type":"assistant","timestamp":"2025-01-01T00:00:01Z","message":{"role":"assistant","content":[{"type":"tool_use","id":"tu_2","name":"Edit","input":{"file_path":"b.go"}}]}}`,
	}
	session, err := Claude{}.Convert([]byte(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	files := session.Header().FilesModified
	if len(files) != 2 || files[0] != "a.go" || files[1] != "b.go" {
		t.Fatalf("files_modified = %v", files)
	}
}

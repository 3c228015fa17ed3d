package format

import (
	"bytes"
	"strings"
	"testing"
)

const minimalSession = `{"id":"00000000-0000-0000-0000-000000000000","ts":0,"type":"session","version":"1.0","agent":"test","recorded_at":"2025-01-01T00:00:00Z"}`

func TestReadMinimalFile(t *testing.T) {
	s, err := Read(strings.NewReader(minimalSession), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.Entries))
	}
	if s.Header() == nil {
		t.Fatal("expected a header")
	}
	vr := Validate(s, DefaultValidationOptions())
	if !vr.IsValid() {
		t.Fatalf("expected valid, got errors %v", vr.Errors)
	}
}

func TestMissingSessionEntry(t *testing.T) {
	s, err := Read(strings.NewReader(`{"id":"x","ts":0,"type":"prompt","content":"hi"}`), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if s.Header() != nil {
		t.Fatal("expected no header")
	}
	vr := Validate(s, DefaultValidationOptions())
	if vr.IsValid() {
		t.Fatal("expected a MissingHeader error")
	}
	found := false
	for _, v := range vr.Errors {
		if v.Kind == MissingHeader {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want MissingHeader", vr.Errors)
	}
}

func TestHeaderNotFirst(t *testing.T) {
	input := `{"id":"x","ts":0,"type":"prompt","content":"hi"}` + "\n" + minimalSession

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(s.Entries))
	}

	vr := Validate(s, DefaultValidationOptions())
	if vr.IsValid() {
		t.Fatal("expected errors")
	}
	var kinds []ViolationKind
	for _, v := range vr.Errors {
		kinds = append(kinds, v.Kind)
	}
	if !containsKind(kinds, MissingHeader) || !containsKind(kinds, HeaderNotFirst) {
		t.Fatalf("errors = %v, want MissingHeader and HeaderNotFirst", vr.Errors)
	}
}

func containsKind(kinds []ViolationKind, want ViolationKind) bool {
	for _, k := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

func TestUnknownTypePreservedRoundTrip(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"00000000-0000-0000-0000-000000000001","ts":100,"type":"x_future_type","data":"unknown"}` + "\n" +
		`{"id":"00000000-0000-0000-0000-000000000002","ts":200,"type":"prompt","content":"hello"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(s.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(s.Entries))
	}

	unk, ok := s.Entries[1].(*UnknownEntry)
	if !ok {
		t.Fatalf("entries[1] = %T, want *UnknownEntry", s.Entries[1])
	}
	if unk.EntryType() != "x_future_type" {
		t.Fatalf("type = %q", unk.EntryType())
	}

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}

	s2, err := Read(&buf, ReadOptions{})
	if err != nil {
		t.Fatalf("re-Read: %v", err)
	}
	if len(s2.Entries) != 3 {
		t.Fatalf("round-tripped entries = %d, want 3", len(s2.Entries))
	}
	unk2 := s2.Entries[1].(*UnknownEntry)
	if string(unk2.Raw["data"]) != `"unknown"` {
		t.Fatalf("data = %s", unk2.Raw["data"])
	}
	prompt := s2.Entries[2].(*PromptEntry)
	if prompt.Content != "hello" {
		t.Fatalf("content = %q", prompt.Content)
	}
}

func TestExtraFieldsRoundTrip(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"00000000-0000-0000-0000-000000000001","ts":100,"type":"prompt","content":"hi","x_custom":"value"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	prompt := s.Entries[1].(*PromptEntry)
	if string(prompt.Extra["x_custom"]) != `"value"` {
		t.Fatalf("extra = %v", prompt.Extra)
	}

	var buf bytes.Buffer
	if err := Write(&buf, s); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `"x_custom":"value"`) {
		t.Fatalf("extras not re-emitted: %s", buf.String())
	}
}

func TestToolCorrelation(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"A","ts":3000,"type":"tool_call","tool":"read_file","input":{}}` + "\n" +
		`{"id":"B","ts":3200,"type":"tool_result","call_id":"A","output":"x"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	vr := Validate(s, DefaultValidationOptions())
	if !vr.IsValid() {
		t.Fatalf("expected valid, got errors %v", vr.Errors)
	}
}

func TestTrim(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"a","ts":100,"type":"prompt","content":"first"}` + "\n" +
		`{"id":"b","ts":5000,"type":"prompt","content":"second"}` + "\n" +
		`{"id":"c","ts":9000,"type":"prompt","content":"third"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	trimmed := s.Trim(0, 5000)
	for _, e := range trimmed.Entries[1:] {
		if e.Timestamp() < 0 || e.Timestamp() > 5000 {
			t.Fatalf("entry ts %d outside kept range", e.Timestamp())
		}
	}
	if trimmed.Header().Trimmed == nil {
		t.Fatal("expected trimmed metadata")
	}
	if trimmed.Header().Trimmed.KeptRange != [2]int64{0, 5000} {
		t.Fatalf("kept_range = %v", trimmed.Header().Trimmed.KeptRange)
	}
	if *trimmed.Header().EntryCount != len(trimmed.Entries) {
		t.Fatalf("entry_count = %d, want %d", *trimmed.Header().EntryCount, len(trimmed.Entries))
	}
}

package format

import (
	"strings"
	"testing"
)

func TestDuplicateIDIsWarningNotError(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"dup","ts":100,"type":"prompt","content":"first"}` + "\n" +
		`{"id":"dup","ts":200,"type":"prompt","content":"second"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	vr := Validate(s, DefaultValidationOptions())
	if !vr.IsValid() {
		t.Fatalf("duplicate ids must not be hard errors, got %v", vr.Errors)
	}
	found := false
	for _, w := range vr.Warnings {
		if w.Kind == DuplicateID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a duplicate_id warning")
	}
}

func TestDanglingToolResultIsWarning(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"r","ts":100,"type":"tool_result","call_id":"missing","output":"x"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	vr := Validate(s, DefaultValidationOptions())
	if !vr.IsValid() {
		t.Fatalf("dangling tool_result must be a warning, got errors %v", vr.Errors)
	}
	if len(vr.Warnings) == 0 {
		t.Fatal("expected a warning")
	}
}

func TestToolResultAmbiguousIsError(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"r","ts":100,"type":"tool_result","call_id":"c"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	vr := Validate(s, DefaultValidationOptions())
	if vr.IsValid() {
		t.Fatal("expected tool_result with neither output nor error to be invalid")
	}
}

func TestOutOfOrderTimestampsAreWarningsOnly(t *testing.T) {
	input := minimalSession + "\n" +
		`{"id":"a","ts":200,"type":"prompt","content":"second"}` + "\n" +
		`{"id":"b","ts":100,"type":"prompt","content":"first but later"}`

	s, err := Read(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	vr := Validate(s, DefaultValidationOptions())
	if !vr.IsValid() {
		t.Fatalf("out of order must not be an error, got %v", vr.Errors)
	}
	if len(vr.Warnings) == 0 {
		t.Fatal("expected a warning")
	}
}

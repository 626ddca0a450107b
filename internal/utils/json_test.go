package utils

import "testing"

func TestExtractJSON(t *testing.T) {
	content := "Here is the result:\n```json\n{\"name\": \"test\"}\n```\nDone."
	if got := ExtractJSON(content); got != `{"name": "test"}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONNested(t *testing.T) {
	content := `prefix {"outer": {"inner": 1}} suffix`
	if got := ExtractJSON(content); got != `{"outer": {"inner": 1}}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONArray(t *testing.T) {
	content := "Questions below:\n[{\"id\": \"full_name\"}, {\"id\": \"address\"}]\nThat is all."
	if got := ExtractJSONArray(content); got != `[{"id": "full_name"}, {"id": "address"}]` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractJSONArrayNoMatchReturnsInput(t *testing.T) {
	content := "no array here"
	if got := ExtractJSONArray(content); got != content {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestToJSON(t *testing.T) {
	if got := ToJSON(map[string]string{"a": "b"}); got != `{"a":"b"}` {
		t.Fatalf("unexpected json: %q", got)
	}
}

package format

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	TaskID string `json:"task_id"`
	Done   bool   `json:"done"`
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Result{Data: sample{TaskID: "t1", Done: true}, Outcome: "committed"}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := `{"data":{"task_id":"t1","done":true},"outcome":"committed"}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteYAML_UsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sample{TaskID: "t1"}, "yaml", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "task_id: t1") {
		t.Fatalf("expected json field names, got %q", buf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

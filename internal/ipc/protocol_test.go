package ipc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRequestRoundTrip(t *testing.T) {
	payload, _ := json.Marshal(DoPayload{Action: "move", Direction: "east", Window: 42})
	raw, err := json.Marshal(Request{Command: CommandDo, Payload: payload})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req, err := ParseRequest(append(raw, '\n'))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	if req.Command != CommandDo {
		t.Fatalf("command: got %s, want %s", req.Command, CommandDo)
	}

	var p DoPayload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.Action != "move" || p.Direction != "east" || p.Window != 42 {
		t.Fatalf("payload: got %+v", p)
	}
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	if _, err := ParseRequest([]byte("not json\n")); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestResponseMarshalShapes(t *testing.T) {
	ok, err := NewOKResponse(LayoutsData{Layouts: []string{"default", "last"}})
	if err != nil {
		t.Fatalf("NewOKResponse: %v", err)
	}
	data, err := ok.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"status":"OK"`) {
		t.Fatalf("missing status: %s", data)
	}

	errResp := NewErrorResponse("boom")
	data, _ = errResp.Marshal()
	if !strings.Contains(string(data), `"status":"ERROR"`) || !strings.Contains(string(data), `"error":"boom"`) {
		t.Fatalf("error response shape: %s", data)
	}
}

func TestLayoutNameDefaults(t *testing.T) {
	if got := layoutName(nil); got != "default" {
		t.Fatalf("nil payload: got %q, want %q", got, "default")
	}
	payload, _ := json.Marshal(LayoutPayload{Name: "coding"})
	if got := layoutName(payload); got != "coding" {
		t.Fatalf("named payload: got %q, want %q", got, "coding")
	}
	empty, _ := json.Marshal(LayoutPayload{})
	if got := layoutName(empty); got != "default" {
		t.Fatalf("empty payload: got %q, want %q", got, "default")
	}
}

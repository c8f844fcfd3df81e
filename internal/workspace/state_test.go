package workspace

import (
	"strings"
	"testing"
	"time"

	"github.com/cybergodev/jwtcodec"
)

const (
	johnDoeToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
		"eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIn0." +
		"Qfi-QMeGHIw0iMBkiHSIbFtmfCoWMVbT9BbhHFxr0KY"
	johnDoeHeader  = `{"alg":"HS256","typ":"JWT"}`
	johnDoePayload = `{"sub":"1234567890","name":"John Doe"}`
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newCodec(t *testing.T) *jwtcodec.Codec {
	t.Helper()
	codec, err := jwtcodec.New()
	if err != nil {
		t.Fatalf("jwtcodec.New: %v", err)
	}
	return codec
}

func TestStateDecode(t *testing.T) {
	codec := newCodec(t)
	var s State

	if err := s.Decode(codec, johnDoeToken, testNow); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(s.Header) != johnDoeHeader {
		t.Errorf("Header = %s", s.Header)
	}
	if string(s.Payload) != johnDoePayload {
		t.Errorf("Payload = %s", s.Payload)
	}
	if want := "{\n  \"alg\": \"HS256\",\n  \"typ\": \"JWT\"\n}"; s.HeaderText != want {
		t.Errorf("HeaderText = %q", s.HeaderText)
	}
	if s.Message != "" || !s.UpdatedAt.Equal(testNow) {
		t.Errorf("Message = %q, UpdatedAt = %v", s.Message, s.UpdatedAt)
	}
}

func TestStateDecodeFailureKeepsDocuments(t *testing.T) {
	codec := newCodec(t)
	var s State
	if err := s.Decode(codec, johnDoeToken, testNow); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	before := s

	tests := []struct {
		name  string
		token string
	}{
		{"no dot", "abc"},
		{"bad base64", "!!!.e30"},
		{"not json", "bm90IGpzb24.e30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Decode(codec, tt.token, testNow.Add(time.Minute)); err == nil {
				t.Fatal("expected error")
			}
			if s.Token != tt.token {
				t.Errorf("Token = %q, want the new input", s.Token)
			}
			if string(s.Header) != string(before.Header) || string(s.Payload) != string(before.Payload) {
				t.Errorf("documents changed: %s %s", s.Header, s.Payload)
			}
			if s.HeaderText != before.HeaderText || s.PayloadText != before.PayloadText {
				t.Error("texts changed")
			}
			if !strings.HasPrefix(s.Message, "Failed to decode token: ") {
				t.Errorf("Message = %q", s.Message)
			}
		})
	}

	if err := s.Decode(codec, johnDoeToken, testNow); err != nil || s.Message != "" {
		t.Errorf("successful decode should clear the message: %q, %v", s.Message, err)
	}
}

func TestStateDecodeNullDocuments(t *testing.T) {
	codec := newCodec(t)
	var s State
	if err := s.Decode(codec, "bnVsbA.bnVsbA.", testNow); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s.Header != nil || s.Payload != nil || s.HeaderText != "" || s.PayloadText != "" {
		t.Errorf("null documents should be absent: %+v", s)
	}
}

func TestStateEncode(t *testing.T) {
	codec := newCodec(t)
	var s State

	if err := s.Encode(codec, `{alg: 'HS256', typ: 'JWT'}`, `{sub: '1234567890', name: 'John Doe',}`, testNow); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if s.Token != johnDoeToken {
		t.Errorf("Token = %s", s.Token)
	}
	if string(s.Header) != johnDoeHeader || string(s.Payload) != johnDoePayload {
		t.Errorf("documents = %s %s", s.Header, s.Payload)
	}
	if s.HeaderText != `{alg: 'HS256', typ: 'JWT'}` {
		t.Errorf("HeaderText should keep the edited text, got %q", s.HeaderText)
	}

	if err := s.Encode(codec, "", "  ", testNow); err != nil {
		t.Fatalf("Encode blank: %v", err)
	}
	if s.Token != "bnVsbA.bnVsbA.S4wNWWbVMm6ZNTLUEj99fiodNlJSnImmeTU_x4vCV8o" {
		t.Errorf("blank texts Token = %s", s.Token)
	}
	if s.Header != nil || s.Payload != nil {
		t.Errorf("blank texts should be absent documents")
	}
}

func TestStateEncodeFailure(t *testing.T) {
	codec := newCodec(t)

	tests := []struct {
		name    string
		header  string
		payload string
		prefix  string
	}{
		{"header", `{alg: `, `{}`, "Failed to convert header to json: "},
		{"payload", `{}`, `{a: 1`, "Failed to convert payload to json: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			if err := s.Decode(codec, johnDoeToken, testNow); err != nil {
				t.Fatalf("Decode: %v", err)
			}

			if err := s.Encode(codec, tt.header, tt.payload, testNow); err == nil {
				t.Fatal("expected error")
			}
			if !strings.HasPrefix(s.Message, tt.prefix) {
				t.Errorf("Message = %q, want prefix %q", s.Message, tt.prefix)
			}
			if len(s.Message) == len(tt.prefix) {
				t.Error("Message has no detail")
			}
			if s.Token != johnDoeToken || string(s.Header) != johnDoeHeader {
				t.Errorf("token or documents changed: %s %s", s.Token, s.Header)
			}
			if s.HeaderText != tt.header || s.PayloadText != tt.payload {
				t.Error("edited texts should be kept")
			}
		})
	}
}

func TestStateClear(t *testing.T) {
	codec := newCodec(t)
	s := State{ID: "id-1"}
	if err := s.Decode(codec, johnDoeToken, testNow); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	s.Message = "stale"

	later := testNow.Add(time.Hour)
	s.Clear(later)

	want := State{ID: "id-1", UpdatedAt: later}
	if s.Token != "" || s.HeaderText != "" || s.PayloadText != "" || s.Header != nil || s.Payload != nil || s.Message != "" {
		t.Errorf("Clear left %+v", s)
	}
	if s.ID != want.ID || !s.UpdatedAt.Equal(later) {
		t.Errorf("Clear = %+v, want %+v", s, want)
	}
}

func TestStateSnapshot(t *testing.T) {
	codec := newCodec(t)
	s := &State{ID: "id-1"}
	if err := s.Decode(codec, johnDoeToken, testNow); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	data, err := marshalState(s)
	if err != nil {
		t.Fatalf("marshalState: %v", err)
	}
	got, err := unmarshalState(data)
	if err != nil {
		t.Fatalf("unmarshalState: %v", err)
	}
	if got.Token != s.Token || string(got.Header) != johnDoeHeader || got.PayloadText != s.PayloadText {
		t.Errorf("snapshot = %+v", got)
	}

	empty, err := unmarshalState([]byte(`{"id":"x","header":null,"payload":null}`))
	if err != nil {
		t.Fatalf("unmarshalState: %v", err)
	}
	if empty.Header != nil || empty.Payload != nil {
		t.Errorf("null documents should load as nil: %s %s", empty.Header, empty.Payload)
	}
}

package base64url

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	random := make([]byte, 257)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0xff}},
		{"two bytes", []byte{0xfb, 0xff}},
		{"three bytes", []byte("foo")},
		{"json header", []byte(`{"alg":"HS256","typ":"JWT"}`)},
		{"random", random},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := Encode(tt.input)
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", encoded, err)
			}
			if !bytes.Equal(decoded, tt.input) {
				t.Errorf("round trip mismatch: got %x, want %x", decoded, tt.input)
			}
		})
	}
}

func TestEncodeAlphabet(t *testing.T) {
	got := Encode([]byte{0xfb, 0xff, 0xbf})
	if got != "-_-_" {
		t.Errorf("Encode = %q, want %q", got, "-_-_")
	}

	if got := EncodeString("foob"); got != "Zm9vYg" {
		t.Errorf("EncodeString = %q, want unpadded %q", got, "Zm9vYg")
	}

	if got := Encode(nil); got != "" {
		t.Errorf("Encode(nil) = %q, want empty", got)
	}
}

func TestDecodeKnownValues(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"Zg", "f"},
		{"Zm8", "fo"},
		{"Zm9v", "foo"},
		{"Zm9vYmE", "fooba"},
		{"eyJhIjoxfQ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tt.input, err)
			}
			if string(got) != tt.want {
				t.Errorf("Decode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"standard alphabet plus", "ab+c"},
		{"standard alphabet slash", "ab/c"},
		{"padding", "Zg=="},
		{"embedded padding", "Zg=v"},
		{"embedded space", "Zm 9v"},
		{"embedded newline", "Zm9v\nYmE"},
		{"trailing newline", "Zm9v\n"},
		{"impossible length", "Zm9vY"},
		{"single char", "Z"},
		{"non-canonical tail", "Zh"},
		{"bang", "not-valid-b64!!"},
		{"non-ascii", "Zm9vé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("Decode(%q) = %q, want error", tt.input, got)
			}
			if !errors.Is(err, ErrInvalidBase64) {
				t.Errorf("error %v does not wrap ErrInvalidBase64", err)
			}
		})
	}
}

func BenchmarkEncode(b *testing.B) {
	data := bytes.Repeat([]byte(`{"sub":"1234567890","name":"John Doe"}`), 8)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Encode(data)
	}
}

func BenchmarkDecode(b *testing.B) {
	s := Encode(bytes.Repeat([]byte(`{"sub":"1234567890","name":"John Doe"}`), 8))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(s); err != nil {
			b.Fatal(err)
		}
	}
}

package signing

import (
	"crypto"
	"encoding/hex"
	"errors"
	"sync"
	"testing"
)

func TestGetMethod(t *testing.T) {
	tests := []struct {
		alg      string
		wantErr  bool
		wantHash crypto.Hash
	}{
		{"HS256", false, crypto.SHA256},
		{"none", false, 0},
		{"HS384", true, 0},
		{"RS256", true, 0},
		{"hs256", true, 0},
		{"NONE", true, 0},
		{"", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.alg, func(t *testing.T) {
			method, err := GetMethod(tt.alg)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedAlgorithm) {
					t.Errorf("GetMethod(%q) error = %v, want ErrUnsupportedAlgorithm", tt.alg, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetMethod(%q) error: %v", tt.alg, err)
			}
			if method.Alg() != tt.alg {
				t.Errorf("Alg() = %q, want %q", method.Alg(), tt.alg)
			}
			if method.Hash() != tt.wantHash {
				t.Errorf("Hash() = %v, want %v", method.Hash(), tt.wantHash)
			}
		})
	}
}

func TestHS256KnownVectors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		input string
		want  string
	}{
		{
			name: "empty key and input",
			want: "b613679a0814d9ec772f95d778c35fc5ff1697c493715653c6c712144292c5ad",
		},
		{
			name:  "RFC 4231 test case 2",
			key:   "Jefe",
			input: "what do ya want for nothing?",
			want:  "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := HS256.Sign(tt.input, []byte(tt.key))
			if err != nil {
				t.Fatalf("Sign error: %v", err)
			}
			if got := hex.EncodeToString(sig); got != tt.want {
				t.Errorf("signature = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestHS256SignAndVerify(t *testing.T) {
	signingInput := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJ0ZXN0In0"

	for _, key := range [][]byte{nil, {}, []byte("short"), []byte("test-secret-key-with-sufficient-length")} {
		sig, err := HS256.Sign(signingInput, key)
		if err != nil {
			t.Fatalf("Sign error: %v", err)
		}
		if len(sig) != 32 {
			t.Errorf("signature length = %d, want 32", len(sig))
		}

		again, _ := HS256.Sign(signingInput, key)
		if string(again) != string(sig) {
			t.Error("Sign is not deterministic")
		}

		if err := HS256.Verify(signingInput, sig, key); err != nil {
			t.Errorf("Verify with correct key: %v", err)
		}
		if err := HS256.Verify(signingInput+"x", sig, key); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("Verify with altered input error = %v, want ErrSignatureInvalid", err)
		}
		if err := HS256.Verify(signingInput, sig, append([]byte("other"), key...)); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("Verify with wrong key error = %v, want ErrSignatureInvalid", err)
		}
		if err := HS256.Verify(signingInput, sig[:16], key); !errors.Is(err, ErrSignatureInvalid) {
			t.Errorf("Verify with truncated signature error = %v, want ErrSignatureInvalid", err)
		}
	}
}

func TestHS256DoesNotModifyKey(t *testing.T) {
	key := []byte("caller-owned-key")
	if _, err := HS256.Sign("a.b", key); err != nil {
		t.Fatal(err)
	}
	if string(key) != "caller-owned-key" {
		t.Errorf("key modified to %q", key)
	}
}

func TestNone(t *testing.T) {
	sig, err := None.Sign("a.b", []byte("ignored"))
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}
	if len(sig) != 0 {
		t.Errorf("none signature = %x, want empty", sig)
	}
	if err := None.Verify("a.b", nil, nil); err != nil {
		t.Errorf("Verify(empty) error: %v", err)
	}
	if err := None.Verify("a.b", []byte{1}, nil); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify(non-empty) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestAlgorithms(t *testing.T) {
	algs := Algorithms()
	if len(algs) != 2 || algs[0] != "HS256" || algs[1] != "none" {
		t.Errorf("Algorithms() = %v", algs)
	}
}

func TestConcurrentSign(t *testing.T) {
	want, _ := HS256.Sign("a.b", []byte("k"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got, err := HS256.Sign("a.b", []byte("k"))
				if err != nil || string(got) != string(want) {
					t.Errorf("concurrent Sign mismatch: %x, %v", got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkHS256Sign(b *testing.B) {
	input := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiIxMjM0NTY3ODkwIiwibmFtZSI6IkpvaG4gRG9lIiwiaWF0IjoxNTE2MjM5MDIyfQ"
	key := []byte("your-256-bit-secret")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := HS256.Sign(input, key); err != nil {
			b.Fatal(err)
		}
	}
}

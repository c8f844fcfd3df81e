package signing

import (
	"crypto"
	"crypto/hmac"
	_ "crypto/sha256"
	"fmt"

	"github.com/cybergodev/jwtcodec/internal/security"
)

type hmacMethod struct {
	name string
	hash crypto.Hash
}

// HS256 is HMAC-SHA256. Any key length is accepted, including zero.
var HS256 Method = &hmacMethod{name: "HS256", hash: crypto.SHA256}

func (h *hmacMethod) Alg() string       { return h.name }
func (h *hmacMethod) Hash() crypto.Hash { return h.hash }

func (h *hmacMethod) Sign(signingInput string, key []byte) ([]byte, error) {
	if !h.hash.Available() {
		return nil, fmt.Errorf("hash function %v not available", h.hash)
	}

	keyCopy := security.CopyBytes(key)
	defer security.ZeroBytes(keyCopy)

	mac := hmac.New(h.hash.New, keyCopy)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil), nil
}

func (h *hmacMethod) Verify(signingInput string, signature, key []byte) error {
	expected, err := h.Sign(signingInput, key)
	if err != nil {
		return err
	}
	defer security.ZeroBytes(expected)

	if !security.SecureCompare(signature, expected) {
		security.RandomDelay()
		return ErrSignatureInvalid
	}
	return nil
}

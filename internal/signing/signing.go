// Package signing computes the third segment of a compact token.
package signing

import (
	"crypto"
	"errors"
	"fmt"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	ErrSignatureInvalid     = errors.New("signature verification failed")
)

// Method signs and verifies a signing input ("header.payload") with a
// symmetric key. Implementations are stateless and safe for concurrent use.
type Method interface {
	Alg() string
	Sign(signingInput string, key []byte) ([]byte, error)
	Verify(signingInput string, signature, key []byte) error
	Hash() crypto.Hash
}

// GetMethod returns the Method registered for alg. Names are matched exactly,
// so "hs256" and "NONE" are rejected.
func GetMethod(alg string) (Method, error) {
	switch alg {
	case HS256.Alg():
		return HS256, nil
	case None.Alg():
		return None, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}

// Algorithms lists the registered algorithm names.
func Algorithms() []string {
	return []string{HS256.Alg(), None.Alg()}
}

type noneMethod struct{}

// None produces an empty signature and only accepts an empty one.
var None Method = noneMethod{}

func (noneMethod) Alg() string       { return "none" }
func (noneMethod) Hash() crypto.Hash { return 0 }

func (noneMethod) Sign(string, []byte) ([]byte, error) {
	return []byte{}, nil
}

func (noneMethod) Verify(_ string, signature, _ []byte) error {
	if len(signature) != 0 {
		return fmt.Errorf("%w: alg none requires an empty signature", ErrSignatureInvalid)
	}
	return nil
}

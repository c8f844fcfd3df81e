// Package core implements the compact token layout: splitting a token into
// segments, decoding each segment into a JSON value and assembling segments
// back into a signed token.
package core

import (
	"fmt"

	"github.com/cybergodev/jwtcodec/internal/base64url"
	"github.com/cybergodev/jwtcodec/internal/signing"
	"github.com/cybergodev/jwtcodec/internal/transcode"
	"github.com/valyala/fastjson"
)

// Parts holds the raw, still encoded segments of a token.
type Parts struct {
	Header    string
	Payload   string
	Signature string

	// Count is the number of dot-separated segments found, at least 2.
	Count int
}

// HasSignature reports whether a third segment was present, even if empty.
func (p Parts) HasSignature() bool {
	return p.Count >= 3
}

// SigningInput is the ASCII text the signature is computed over.
func (p Parts) SigningInput() string {
	return p.Header + "." + p.Payload
}

// Split cuts token on '.'. Segments past the third are counted but otherwise
// ignored.
func Split(token string) (Parts, error) {
	first, second := -1, -1
	count := 1
	for i := 0; i < len(token); i++ {
		if token[i] != '.' {
			continue
		}
		count++
		switch {
		case first < 0:
			first = i
		case second < 0:
			second = i
		}
	}

	if first < 0 {
		return Parts{}, ErrMalformedToken
	}

	parts := Parts{Header: token[:first], Count: count}
	if second < 0 {
		parts.Payload = token[first+1:]
		return parts, nil
	}

	parts.Payload = token[first+1 : second]
	rest := token[second+1:]
	for i := 0; i < len(rest); i++ {
		if rest[i] == '.' {
			rest = rest[:i]
			break
		}
	}
	parts.Signature = rest
	return parts, nil
}

// DecodeSegment turns one encoded segment into a JSON value. JSON null
// decodes to nil.
func DecodeSegment(seg Segment, encoded string) (*fastjson.Value, error) {
	raw, err := base64url.Decode(encoded)
	if err != nil {
		return nil, segmentError(seg, ErrInvalidBase64, err)
	}

	v, err := transcode.ParseStrict(raw)
	if err != nil {
		return nil, segmentError(seg, ErrInvalidJSON, err)
	}
	if transcode.IsNull(v) {
		return nil, nil
	}
	return v, nil
}

// EncodeSegment serializes v compactly and base64url-encodes the result.
// A nil value encodes as JSON null.
func EncodeSegment(seg Segment, v *fastjson.Value) (string, error) {
	data, err := transcode.Compact(v)
	if err != nil {
		return "", segmentError(seg, ErrSerialization, err)
	}
	return base64url.Encode(data), nil
}

// DecodeSignature returns the raw signature bytes.
func DecodeSignature(p Parts) ([]byte, error) {
	sig, err := base64url.Decode(p.Signature)
	if err != nil {
		return nil, segmentError(SegmentSignature, ErrInvalidBase64, err)
	}
	return sig, nil
}

// Assemble encodes header and payload, signs the result with method and key
// and joins all three segments.
func Assemble(header, payload *fastjson.Value, method signing.Method, key []byte) (string, error) {
	h, err := EncodeSegment(SegmentHeader, header)
	if err != nil {
		return "", err
	}
	p, err := EncodeSegment(SegmentPayload, payload)
	if err != nil {
		return "", err
	}

	signingInput := h + "." + p
	sig, err := method.Sign(signingInput, key)
	if err != nil {
		return "", fmt.Errorf("sign token with %s: %w", method.Alg(), err)
	}

	encodedSig := base64url.Encode(sig)
	buf := make([]byte, 0, len(signingInput)+1+len(encodedSig))
	buf = append(buf, signingInput...)
	buf = append(buf, '.')
	buf = append(buf, encodedSig...)
	return string(buf), nil
}

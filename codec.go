// Package jwtcodec converts between compact JWT strings and their header and
// payload JSON documents.
//
// Decoding never checks the signature: any token with at least two
// dot-separated segments whose first two segments hold base64url-encoded JSON
// decodes successfully. Encoding signs with HMAC-SHA256 (an empty key by
// default) or leaves the signature empty for the none algorithm. Verify is a
// separate, opt-in check.
package jwtcodec

import (
	"fmt"

	"github.com/cybergodev/jwtcodec/internal/core"
	"github.com/cybergodev/jwtcodec/internal/signing"
	"github.com/cybergodev/jwtcodec/internal/transcode"
)

// Codec encodes and decodes tokens. It is immutable after New and safe for
// concurrent use.
type Codec struct {
	method       signing.Method
	key          []byte
	indent       int
	maxTokenSize int
}

// New creates a Codec. Without a config it uses DefaultConfig.
func New(config ...Config) (*Codec, error) {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	} else {
		cfg = DefaultConfig()
	}

	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmHS256
	}
	if cfg.Indent == 0 {
		cfg.Indent = DefaultIndent
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	method, err := signing.GetMethod(string(cfg.Algorithm))
	if err != nil {
		return nil, err
	}

	return &Codec{
		method:       method,
		key:          []byte(cfg.Key),
		indent:       cfg.Indent,
		maxTokenSize: cfg.MaxTokenSize,
	}, nil
}

// Algorithm returns the signing algorithm used by Encode.
func (c *Codec) Algorithm() Algorithm {
	return Algorithm(c.method.Alg())
}

// Indent returns the indentation width used by DecodeText and Format.
func (c *Codec) Indent() int {
	return c.indent
}

// Encode builds a signed token from header and payload with the configured
// key. A nil document encodes as JSON null.
func (c *Codec) Encode(header, payload *Value) (string, error) {
	return c.EncodeWithKey(header, payload, c.key)
}

// EncodeWithKey is Encode with a per-call key.
func (c *Codec) EncodeWithKey(header, payload *Value, key []byte) (string, error) {
	return core.Assemble(header, payload, c.method, key)
}

// Decode returns the header and payload of token without looking at the
// signature. A JSON null segment decodes to nil.
func (c *Codec) Decode(token string) (header, payload *Value, err error) {
	if err := checkSize("token", token, c.maxTokenSize); err != nil {
		return nil, nil, err
	}

	parts, err := core.Split(token)
	if err != nil {
		return nil, nil, err
	}

	header, err = core.DecodeSegment(core.SegmentHeader, parts.Header)
	if err != nil {
		return nil, nil, err
	}
	payload, err = core.DecodeSegment(core.SegmentPayload, parts.Payload)
	if err != nil {
		return nil, nil, err
	}
	return header, payload, nil
}

// EncodeText parses hand-edited header and payload text with the lenient
// grammar and encodes the result. Blank text is an absent document.
func (c *Codec) EncodeText(headerText, payloadText string) (string, error) {
	header, err := c.parseText(core.SegmentHeader, headerText)
	if err != nil {
		return "", err
	}
	payload, err := c.parseText(core.SegmentPayload, payloadText)
	if err != nil {
		return "", err
	}
	return c.Encode(header, payload)
}

func (c *Codec) parseText(seg core.Segment, text string) (*Value, error) {
	if err := checkSize(seg.String(), text, c.maxTokenSize); err != nil {
		return nil, err
	}
	v, err := transcode.ParseLenient(text)
	if err != nil {
		return nil, &SegmentError{Segment: seg, Kind: ErrInvalidJSON, Err: err}
	}
	return v, nil
}

// DecodeText decodes token and pretty-prints both documents. An absent
// document yields "".
func (c *Codec) DecodeText(token string) (headerText, payloadText string, err error) {
	header, payload, err := c.Decode(token)
	if err != nil {
		return "", "", err
	}
	if headerText, err = c.Format(header); err != nil {
		return "", "", &SegmentError{Segment: core.SegmentHeader, Kind: ErrSerialization, Err: err}
	}
	if payloadText, err = c.Format(payload); err != nil {
		return "", "", &SegmentError{Segment: core.SegmentPayload, Kind: ErrSerialization, Err: err}
	}
	return headerText, payloadText, nil
}

// Format pretty-prints v with the configured indentation. Nil formats as "".
func (c *Codec) Format(v *Value) (string, error) {
	if v == nil {
		return "", nil
	}
	out, err := transcode.Pretty(v, c.indent)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Verify checks the signature of token against key using the configured
// algorithm. It is independent of Decode, which never verifies.
func (c *Codec) Verify(token string, key []byte) error {
	if err := checkSize("token", token, c.maxTokenSize); err != nil {
		return err
	}

	parts, err := core.Split(token)
	if err != nil {
		return err
	}

	header, err := core.DecodeSegment(core.SegmentHeader, parts.Header)
	if err != nil {
		return err
	}
	if _, err := core.DecodeSegment(core.SegmentPayload, parts.Payload); err != nil {
		return err
	}

	if alg := headerAlg(header); alg != "" && alg != c.method.Alg() {
		return fmt.Errorf("%w: header names %q, codec uses %q", ErrSignatureInvalid, alg, c.method.Alg())
	}

	if !parts.HasSignature() || (parts.Signature == "" && c.method != signing.None) {
		return ErrSignatureMissing
	}

	sig, err := core.DecodeSignature(parts)
	if err != nil {
		return err
	}
	return c.method.Verify(parts.SigningInput(), sig, key)
}

func headerAlg(header *Value) string {
	if header == nil {
		return ""
	}
	alg := header.Get("alg")
	if alg == nil {
		return ""
	}
	b, err := alg.StringBytes()
	if err != nil {
		return ""
	}
	return string(b)
}

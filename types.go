package jwtcodec

import (
	"github.com/cybergodev/jwtcodec/internal/core"
	"github.com/valyala/fastjson"
)

// Value is an ordered JSON value. Object members keep the order in which they
// were parsed or set. A nil *Value means the document is absent.
type Value = fastjson.Value

// Algorithm names the method used to compute the signature segment.
type Algorithm string

const (
	// AlgorithmHS256 signs with HMAC-SHA256. An empty key is valid.
	AlgorithmHS256 Algorithm = "HS256"

	// AlgorithmNone leaves the signature segment empty.
	AlgorithmNone Algorithm = "none"
)

// Segment identifies a part of a compact token.
type Segment = core.Segment

const (
	SegmentHeader    = core.SegmentHeader
	SegmentPayload   = core.SegmentPayload
	SegmentSignature = core.SegmentSignature
)

// ClaimTime is a NumericDate claim with its formatted UTC form.
type ClaimTime struct {
	Unix int64  `json:"unix"`
	UTC  string `json:"utc"`
}

// Inspection summarises the registered header fields and claims of a token.
// It is read without verifying the signature.
type Inspection struct {
	Algorithm   string     `json:"alg"`
	Type        string     `json:"typ,omitempty"`
	KeyID       string     `json:"kid,omitempty"`
	Issuer      string     `json:"iss,omitempty"`
	Subject     string     `json:"sub,omitempty"`
	Audience    []string   `json:"aud,omitempty"`
	IssuedAt    *ClaimTime `json:"iat,omitempty"`
	NotBefore   *ClaimTime `json:"nbf,omitempty"`
	ExpiresAt   *ClaimTime `json:"exp,omitempty"`
	Expired     bool       `json:"expired"`
	NotYetValid bool       `json:"not_yet_valid"`
}

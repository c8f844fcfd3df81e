package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cybergodev/jwtcodec/internal/base64url"
	"github.com/cybergodev/jwtcodec/internal/transcode"
)

var (
	ErrMalformedToken = errors.New("malformed token: expected at least two dot-separated segments")
	ErrInvalidBase64  = base64url.ErrInvalidBase64
	ErrInvalidJSON    = transcode.ErrSyntax
	ErrSerialization  = errors.New("cannot serialize JSON")
)

// Segment names one of the three parts of a compact token.
type Segment int

const (
	SegmentHeader Segment = iota
	SegmentPayload
	SegmentSignature
)

func (s Segment) String() string {
	switch s {
	case SegmentHeader:
		return "header"
	case SegmentPayload:
		return "payload"
	case SegmentSignature:
		return "signature"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

// SegmentError ties a failure to the segment that caused it. It matches both
// its Kind sentinel and the underlying cause under errors.Is.
type SegmentError struct {
	Segment Segment
	Kind    error
	Err     error
}

func (e *SegmentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Segment, e.Kind)
	}
	detail := strings.TrimPrefix(e.Err.Error(), e.Kind.Error()+": ")
	return fmt.Sprintf("%s: %v: %s", e.Segment, e.Kind, detail)
}

func (e *SegmentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Detail is the error text without the segment and kind prefixes.
func (e *SegmentError) Detail() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return strings.TrimPrefix(e.Err.Error(), e.Kind.Error()+": ")
}

func segmentError(seg Segment, kind, err error) error {
	return &SegmentError{Segment: seg, Kind: kind, Err: err}
}

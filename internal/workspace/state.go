// Package workspace keeps editor sessions: a token next to the editable text
// of its header and payload, persisted in a Store between requests.
package workspace

import (
	"errors"
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/cybergodev/jwtcodec"
)

// State is one editor session. Header and Payload hold compact JSON and are
// nil when the document is absent.
type State struct {
	ID          string            `json:"id"`
	Token       string            `json:"token"`
	HeaderText  string            `json:"header_text"`
	PayloadText string            `json:"payload_text"`
	Header      gojson.RawMessage `json:"header"`
	Payload     gojson.RawMessage `json:"payload"`
	Message     string            `json:"message,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Decode replaces the texts and decoded documents with those of token. On
// failure the previous documents and texts stay and Message explains why.
// The token field always takes the new value.
func (s *State) Decode(codec *jwtcodec.Codec, token string, now time.Time) error {
	s.Token = token
	s.UpdatedAt = now

	header, payload, err := codec.Decode(token)
	if err != nil {
		s.Message = fmt.Sprintf("Failed to decode token: %v", err)
		return err
	}

	next := *s
	if err := next.setDocuments(codec, header, payload); err != nil {
		s.Message = fmt.Sprintf("Failed to decode token: %v", err)
		return err
	}
	next.Message = ""
	*s = next
	return nil
}

// Encode parses the edited texts and re-encodes the token. Blank text is an
// absent document. On failure the token and documents stay and Message names
// the offending segment.
func (s *State) Encode(codec *jwtcodec.Codec, headerText, payloadText string, now time.Time) error {
	s.HeaderText = headerText
	s.PayloadText = payloadText
	s.UpdatedAt = now

	token, err := codec.EncodeText(headerText, payloadText)
	if err != nil {
		s.Message = encodeMessage(err)
		return err
	}

	header, payload, err := codec.Decode(token)
	if err != nil {
		s.Message = fmt.Sprintf("Failed to encode token: %v", err)
		return err
	}
	h, err := compact(header)
	if err != nil {
		s.Message = fmt.Sprintf("Failed to encode token: %v", err)
		return err
	}
	p, err := compact(payload)
	if err != nil {
		s.Message = fmt.Sprintf("Failed to encode token: %v", err)
		return err
	}

	s.Token = token
	s.Header, s.Payload = h, p
	s.Message = ""
	return nil
}

// Clear resets everything but the ID.
func (s *State) Clear(now time.Time) {
	*s = State{ID: s.ID, UpdatedAt: now}
}

func (s *State) setDocuments(codec *jwtcodec.Codec, header, payload *jwtcodec.Value) error {
	var err error
	if s.Header, err = compact(header); err != nil {
		return err
	}
	if s.Payload, err = compact(payload); err != nil {
		return err
	}
	if s.HeaderText, err = codec.Format(header); err != nil {
		return err
	}
	if s.PayloadText, err = codec.Format(payload); err != nil {
		return err
	}
	return nil
}

func encodeMessage(err error) string {
	var segErr *jwtcodec.SegmentError
	if errors.As(err, &segErr) && errors.Is(err, jwtcodec.ErrInvalidJSON) {
		return fmt.Sprintf("Failed to convert %s to json: %s", segErr.Segment, segErr.Detail())
	}
	return fmt.Sprintf("Failed to encode token: %v", err)
}

func compact(v *jwtcodec.Value) (gojson.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	out, err := jwtcodec.Compact(v)
	if err != nil {
		return nil, err
	}
	return gojson.RawMessage(out), nil
}

func marshalState(s *State) ([]byte, error) {
	return gojson.Marshal(s)
}

func unmarshalState(data []byte) (*State, error) {
	var s State
	if err := gojson.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if string(s.Header) == "null" {
		s.Header = nil
	}
	if string(s.Payload) == "null" {
		s.Payload = nil
	}
	return &s, nil
}

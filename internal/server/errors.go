package server

import (
	"errors"
	"net/http"

	"github.com/cybergodev/jwtcodec"
	"github.com/cybergodev/jwtcodec/internal/workspace"
)

var (
	errBadRequest  = errors.New("bad request")
	errRateLimited = errors.New("rate limit exceeded")
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Segment string `json:"segment,omitempty"`
}

// errorKinds is checked in order; the first match wins.
var errorKinds = []struct {
	err    error
	kind   string
	status int
}{
	{errRateLimited, "rate_limited", http.StatusTooManyRequests},
	{jwtcodec.ErrTokenTooLarge, "too_large", http.StatusRequestEntityTooLarge},
	{errBadRequest, "bad_request", http.StatusBadRequest},
	{jwtcodec.ErrMalformedToken, "malformed_token", http.StatusBadRequest},
	{jwtcodec.ErrInvalidBase64, "invalid_base64", http.StatusBadRequest},
	{jwtcodec.ErrInvalidJSON, "invalid_json", http.StatusBadRequest},
	{jwtcodec.ErrNotInspectable, "not_inspectable", http.StatusBadRequest},
	{workspace.ErrInvalidID, "invalid_id", http.StatusBadRequest},
	{workspace.ErrNotFound, "not_found", http.StatusNotFound},
	{jwtcodec.ErrSerialization, "serialization", http.StatusInternalServerError},
}

func classify(err error) (status int, body errorResponse) {
	body = errorResponse{Error: err.Error(), Kind: "internal"}
	status = http.StatusInternalServerError

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error(), Kind: "too_large"}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			body.Kind, status = k.kind, k.status
			break
		}
	}

	var segErr *jwtcodec.SegmentError
	if errors.As(err, &segErr) {
		body.Segment = segErr.Segment.String()
	}
	return status, body
}

package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/cybergodev/jwtcodec"
)

type encodeRequest struct {
	Header  string `json:"header"`
	Payload string `json:"payload"`
}

type encodeResponse struct {
	Token string `json:"token"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type decodeResponse struct {
	Header      gojson.RawMessage `json:"header"`
	Payload     gojson.RawMessage `json:"payload"`
	HeaderText  string            `json:"header_text"`
	PayloadText string            `json:"payload_text"`
}

type verifyRequest struct {
	Token string `json:"token"`
	Key   string `json:"key"`
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type timestampResponse struct {
	Unix string `json:"unix"`
	UTC  string `json:"utc"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	token, err := s.codec.EncodeText(req.Header, req.Payload)
	s.metrics.observe("encode", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, encodeResponse{Token: token})
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	resp, err := s.decode(req.Token)
	s.metrics.observe("decode", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decode(token string) (*decodeResponse, error) {
	header, payload, err := s.codec.Decode(token)
	if err != nil {
		return nil, err
	}

	var resp decodeResponse
	if resp.Header, err = rawJSON(header); err != nil {
		return nil, err
	}
	if resp.Payload, err = rawJSON(payload); err != nil {
		return nil, err
	}
	if resp.HeaderText, err = s.codec.Format(header); err != nil {
		return nil, err
	}
	if resp.PayloadText, err = s.codec.Format(payload); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	err := s.codec.Verify(req.Token, []byte(req.Key))
	s.metrics.observe("verify", err)
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, verifyResponse{Valid: true})
	case errors.Is(err, jwtcodec.ErrSignatureInvalid), errors.Is(err, jwtcodec.ErrSignatureMissing):
		s.writeJSON(w, http.StatusOK, verifyResponse{Valid: false, Error: err.Error()})
	default:
		s.writeError(w, err)
	}
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	info, err := s.codec.Inspect(req.Token)
	s.metrics.observe("inspect", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTimestamp(w http.ResponseWriter, r *http.Request) {
	if !r.URL.Query().Has("unix") {
		s.writeError(w, fmt.Errorf("%w: missing unix query parameter", errBadRequest))
		return
	}

	filtered, formatted := jwtcodec.ConvertUnixInput(r.URL.Query().Get("unix"))
	s.metrics.observe("timestamp", nil)
	s.writeJSON(w, http.StatusOK, timestampResponse{Unix: filtered, UTC: formatted})
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	state, err := s.workspaces.Create(r.Context())
	s.metrics.observe("workspace_create", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	state, err := s.workspaces.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	err := s.workspaces.Delete(r.Context(), r.PathValue("id"))
	s.metrics.observe("workspace_delete", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWorkspaceDecode(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	state, err := s.workspaces.Decode(r.Context(), r.PathValue("id"), req.Token)
	s.metrics.observe("workspace_decode", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleWorkspaceEncode(w http.ResponseWriter, r *http.Request) {
	var req encodeRequest
	if err := s.readJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	state, err := s.workspaces.Encode(r.Context(), r.PathValue("id"), req.Header, req.Payload)
	s.metrics.observe("workspace_encode", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleWorkspaceClear(w http.ResponseWriter, r *http.Request) {
	state, err := s.workspaces.Clear(r.Context(), r.PathValue("id"))
	s.metrics.observe("workspace_clear", err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		return err
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := gojson.Marshal(v)
	if err != nil {
		s.log.Error("failed to marshal response", "error", err)
		http.Error(w, `{"error":"internal error","kind":"internal"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, body)
}

func rawJSON(v *jwtcodec.Value) (gojson.RawMessage, error) {
	if v == nil {
		return gojson.RawMessage("null"), nil
	}
	out, err := jwtcodec.Compact(v)
	if err != nil {
		return nil, err
	}
	return gojson.RawMessage(out), nil
}

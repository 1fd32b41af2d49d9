package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/studykit/studykit/internal/quiz"
)

// errorBody is the JSON shape every failed request returns.
type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Provider  string `json:"provider,omitempty"`
	Status    int    `json:"providerStatus,omitempty"`
	Retryable bool   `json:"retryable"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("failed to encode response")
	}
}

// respondError maps a service error onto an HTTP status and the uniform
// error body. Caller mistakes are 4xx; upstream provider trouble is
// reported as a bad gateway.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Code: "unknown"}
	status := http.StatusInternalServerError

	var re *quiz.RequestError
	if errors.As(err, &re) {
		body.Code = re.Code
		body.Provider = string(re.Provider)
		body.Status = re.Status
		body.Retryable = re.Retryable

		switch re.Code {
		case "validation":
			status = http.StatusBadRequest
		case "missing_credential":
			status = http.StatusUnprocessableEntity
		case "configuration":
			status = http.StatusInternalServerError
		case "provider_api", "network", "invalid_response",
			"malformed_response", "schema_validation", "missing_code_content":
			status = http.StatusBadGateway
		}
	}

	s.respondJSON(w, status, body)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorBody{
			Error: "invalid request body: " + err.Error(),
			Code:  "bad_json",
		})
		return false
	}
	return true
}

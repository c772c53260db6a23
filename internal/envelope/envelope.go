// Package envelope writes the uniform API response wrapper. Every endpoint
// replies {success:true, data:...} or {success:false, error:..., validation_errors?:...}
// so consumers branch on success alone.
package envelope

import (
	"encoding/json"
	"log"
	"net/http"

	"mockforge/internal/apperrors"
)

// Response is the wire shape of every API reply.
type Response struct {
	Success          bool                `json:"success"`
	Data             any                 `json:"data,omitempty"`
	Error            string              `json:"error,omitempty"`
	ValidationErrors map[string][]string `json:"validation_errors,omitempty"`
	Retryable        bool                `json:"retryable,omitempty"`
}

// WriteData writes a success envelope with the given status and payload.
func WriteData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// WriteError maps err through the apperrors taxonomy and writes a failure envelope.
func WriteError(w http.ResponseWriter, err error) {
	ae := apperrors.From(err)
	writeJSON(w, ae.HTTPStatus(), Response{
		Success:          false,
		Error:            ae.Message,
		ValidationErrors: ae.Fields,
		Retryable:        ae.Retryable(),
	})
}

// WriteMessage writes a failure envelope with an explicit status and message.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("envelope: failed to encode response: %v", err)
	}
}

// DecodeBody decodes a JSON request body into dst, returning a validation
// error on malformed input.
func DecodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.ValidationField("body", "request body required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ValidationField("body", "malformed JSON")
	}
	return nil
}

package envelope

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mockforge/internal/apperrors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestWriteData(t *testing.T) {
	w := httptest.NewRecorder()
	WriteData(w, http.StatusOK, map[string]string{"id": "u1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decode(t, w)
	if !resp.Success {
		t.Error("success should be true")
	}
	if resp.Error != "" {
		t.Errorf("error should be empty, got %q", resp.Error)
	}
}

func TestWriteErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		retryable  bool
	}{
		{"not found", apperrors.NotFound("issue"), http.StatusNotFound, false},
		{"conflict", apperrors.Conflict("slug already taken"), http.StatusConflict, false},
		{"unauthorized", apperrors.Unauthorized(), http.StatusUnauthorized, false},
		{"transient", apperrors.Transient("simulated timeout"), http.StatusServiceUnavailable, true},
		{"unknown wrapped as internal", http.ErrBodyNotAllowed, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			resp := decode(t, w)
			if resp.Success {
				t.Error("success should be false")
			}
			if resp.Retryable != tc.retryable {
				t.Errorf("retryable = %v, want %v", resp.Retryable, tc.retryable)
			}
		})
	}
}

func TestWriteErrorValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, apperrors.Validation(map[string][]string{
		"email": {"must be a valid email"},
		"name":  {"required"},
	}))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode(t, w)
	if len(resp.ValidationErrors["email"]) != 1 {
		t.Errorf("validation_errors missing email entry: %#v", resp.ValidationErrors)
	}
}

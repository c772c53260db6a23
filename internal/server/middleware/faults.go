package middleware

import (
	"net/http"

	"mockforge/internal/apperrors"
	"mockforge/internal/envelope"
)

// FaultHeader triggers a simulated infrastructure failure for the request.
const FaultHeader = "X-Simulate-Fault"

// SimulateFaults short-circuits requests carrying the fault header with a
// retryable 503 so clients can exercise their retry paths against
// deterministic failures.
func SimulateFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(FaultHeader) != "" {
			envelope.WriteError(w, apperrors.Transient("simulated infrastructure failure"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

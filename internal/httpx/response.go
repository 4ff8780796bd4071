package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope: a snake_case code plus an
// optional details payload (per-field violations for validation errors).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. Encoding happens before the
// header is written so a marshal failure never produces partial JSON.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

// JSONError writes an ErrorResponse with the given status and code.
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}

// MethodNotAllowed sets the Allow header and writes the standard 405 body.
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

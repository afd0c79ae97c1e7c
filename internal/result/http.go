package result

import (
	"encoding/json"
	"errors"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a failed envelope outside of a service call
// (authentication, rate limiting, bad JSON).
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Result{
		Success: false,
		Data:    Data{"message": msg},
		Status:  status,
	})
}

// Render writes res using okStatus on success and the result's own status
// on failure. Failures without a status become 500.
func Render(w http.ResponseWriter, okStatus int, res Result) {
	if res.Success {
		WriteJSON(w, okStatus, res)
		return
	}
	status := res.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	WriteJSON(w, status, res)
}

// DecodeJSON reads the request body into v. On failure it writes the error
// response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

package api

import (
	"encoding/json"
	"net/http"

	apperrors "harvin-platform/internal/common/errors"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

type errorBody struct {
	Error    string `json:"error"`
	Code     string `json:"code,omitempty"`
	Details  string `json:"details,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// writeError maps an application error to its HTTP status. Internal details are not exposed.
func writeError(w http.ResponseWriter, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := apperrors.HTTPStatus(stdErr.Code)
	body := errorBody{Error: stdErr.Message, Code: string(stdErr.Code)}
	if status < http.StatusInternalServerError {
		body.Details = stdErr.Details
	}
	JSON(w, status, body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

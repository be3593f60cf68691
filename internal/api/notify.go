package api

import (
	"net/http"

	apperrors "harvin-platform/internal/common/errors"
	leadnotify "harvin-platform/internal/workers/communication/lead-notify"
)

// Notify sends the admin and submitter emails for a lead form.
func (s *Server) Notify(w http.ResponseWriter, r *http.Request) {
	var input leadnotify.Input
	if err := decodeJSON(r, &input); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	out, err := s.notifier.Execute(r.Context(), &input)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeValidationFailed {
			Error(w, http.StatusBadRequest, "Missing required fields")
			return
		}
		Error(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	body := map[string]interface{}{"ok": true}
	if out.Skipped {
		body["skipped"] = true
	}
	JSON(w, http.StatusOK, body)
}

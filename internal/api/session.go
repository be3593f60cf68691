package api

import (
	"net/http"

	"harvin-platform/internal/models"
	"harvin-platform/internal/onboarding"
)

type signInResponse struct {
	User     models.SessionIdentity `json:"user"`
	Redirect string                 `json:"redirect"`
}

func notSignedIn(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, errorBody{
		Error:    "Not signed in",
		Redirect: onboarding.IntentSignIn.Path(),
	})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	identity, err := s.sessions.Current(r.Context(), ClientIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if identity == nil {
		notSignedIn(w)
		return
	}
	JSON(w, http.StatusOK, identity)
}

// SignIn stores the identity returned by the OAuth provider.
func (s *Server) SignIn(w http.ResponseWriter, r *http.Request) {
	var identity models.SessionIdentity
	if err := decodeJSON(r, &identity); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	saved, err := s.sessions.SignIn(r.Context(), ClientIDFromContext(r.Context()), identity)
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, signInResponse{User: saved, Redirect: onboarding.IntentOnboarding.Path()})
}

func (s *Server) SignInDemo(w http.ResponseWriter, r *http.Request) {
	saved, err := s.sessions.SignInDemo(r.Context(), ClientIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, signInResponse{User: saved, Redirect: onboarding.IntentOnboarding.Path()})
}

func (s *Server) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), ClientIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"redirect": onboarding.IntentSignIn.Path(),
	})
}

func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.sessions.Dashboard(r.Context(), ClientIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if view.Intent == onboarding.IntentSignIn {
		notSignedIn(w)
		return
	}
	JSON(w, http.StatusOK, view)
}

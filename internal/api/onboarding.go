package api

import (
	"net/http"

	"harvin-platform/internal/onboarding"
)

type wizardView struct {
	onboarding.Result
	Redirect string `json:"redirect,omitempty"`
}

type toggleRequest struct {
	Key   onboarding.SetKey `json:"key"`
	Value string            `json:"value"`
}

type toggleCatalogRequest struct {
	Catalog onboarding.IndustryCatalog `json:"catalog"`
}

// respondWizard writes a wizard result. A dropped navigation command answers 202.
func respondWizard(w http.ResponseWriter, res onboarding.Result, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if res.Ignored {
		status = http.StatusAccepted
	}
	JSON(w, status, wizardView{Result: res, Redirect: res.Intent.Path()})
}

func (s *Server) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	res, err := s.wizard.Load(r.Context(), ClientIDFromContext(r.Context()))
	respondWizard(w, res, err)
}

func (s *Server) SetAnswers(w http.ResponseWriter, r *http.Request) {
	var patch onboarding.Patch
	if err := decodeJSON(r, &patch); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	res, err := s.wizard.Set(r.Context(), ClientIDFromContext(r.Context()), patch)
	respondWizard(w, res, err)
}

func (s *Server) Toggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	res, err := s.wizard.Toggle(r.Context(), ClientIDFromContext(r.Context()), req.Key, req.Value)
	respondWizard(w, res, err)
}

func (s *Server) ToggleCatalog(w http.ResponseWriter, r *http.Request) {
	var req toggleCatalogRequest
	if err := decodeJSON(r, &req); err != nil {
		Error(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	res, err := s.wizard.ToggleCatalog(r.Context(), ClientIDFromContext(r.Context()), req.Catalog)
	respondWizard(w, res, err)
}

func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	res, err := s.wizard.Next(r.Context(), ClientIDFromContext(r.Context()))
	respondWizard(w, res, err)
}

func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	res, err := s.wizard.Back(r.Context(), ClientIDFromContext(r.Context()))
	respondWizard(w, res, err)
}

func (s *Server) Skip(w http.ResponseWriter, r *http.Request) {
	res, err := s.wizard.Skip(r.Context(), ClientIDFromContext(r.Context()))
	respondWizard(w, res, err)
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) handleListInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := s.svcs.Budget.ListInsights(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(insights)).Write(w)
}

func (s *Server) handleListInsightsByAuthor(w http.ResponseWriter, r *http.Request) {
	insights, err := s.svcs.Budget.ListInsightsByAuthor(r.Context(), sanitizeInput(mux.Vars(r)["author"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(nonNil(insights)).Write(w)
}

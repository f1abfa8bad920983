package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

type listRunsResponse struct {
	Runs  []*journal.Run `json:"runs"`
	Total int            `json:"total"`
}

// handleListRuns lists runs, optionally filtered by ?state=a,b.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	var parameters []*dao.Parameter
	if state := r.URL.Query().Get("state"); state != "" {
		parameters = append(parameters, dao.NewParameter(journal.StateParameter, strings.Split(state, ",")...))
	}
	runs, err := s.journal.List(r.Context(), parameters...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []*journal.Run{}
	}
	s.writeJSON(w, http.StatusOK, listRunsResponse{Runs: runs, Total: len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.journal.Load(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, dao.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

type extensionResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Kind  string `json:"kind"`
}

func (s *Server) handleListExtensions(w http.ResponseWriter, r *http.Request) {
	ret := []extensionResponse{}
	if s.extensions != nil {
		for _, item := range s.extensions.List() {
			ret = append(ret, extensionResponse{ID: item.ID, Title: item.Title, Kind: string(item.Kind)})
		}
	}
	s.writeJSON(w, http.StatusOK, ret)
}

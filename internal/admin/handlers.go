package admin

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"julferiin-ops/internal/logistics"
	"julferiin-ops/internal/notify"
	"julferiin-ops/internal/view"
)

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Entities())
}

func (s *Server) handleEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := s.Sim.Entity(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	var req struct {
		State string `json:"state"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	state, err := logistics.ParseState(req.State)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := mux.Vars(r)["id"]
	if !s.Sim.SetState(id, state) {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	e, _ := s.Sim.Entity(id)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	s.Sim.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGeofences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Geofences())
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	entities := s.Sim.Entities()
	s.Selection.Refresh(entities)
	writeJSON(w, http.StatusOK, view.BuildScene(entities, s.Sim.Geofences(), s.Selection, s.Projection))
}

type selectionResponse struct {
	Selected *logistics.Entity `json:"selected"`
	Layers   view.Layers       `json:"layers"`
}

func (s *Server) selection() selectionResponse {
	resp := selectionResponse{Layers: s.Selection.Layers()}
	if e, ok := s.Selection.Current(); ok {
		resp.Selected = &e
	}
	return resp
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	s.Selection.Refresh(s.Sim.Entities())
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !s.Selection.Select(mux.Vars(r)["id"], s.Sim.Entities()) {
		writeError(w, http.StatusNotFound, "entity not found")
		return
	}
	writeJSON(w, http.StatusOK, s.selection())
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.Selection.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleLayer(w http.ResponseWriter, r *http.Request) {
	layer, err := view.ParseLayer(mux.Vars(r)["layer"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	on, err := s.Selection.Toggle(layer)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layer": layer, "visible": on})
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Snapshot())
}

func (s *Server) handleAddNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Message string `json:"message"`
		Type    string `json:"type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Type == "" {
		req.Type = string(notify.KindInfo)
	}
	kind, err := notify.ParseKind(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.Store.Add(req.Title, req.Message, kind))
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	s.Store.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	changed := s.Store.MarkRead(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "unread": s.Store.Unread()})
}

func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Toasts())
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Branches.List())
}

type directorRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleBranchAlert(w http.ResponseWriter, r *http.Request) {
	b, ok := s.branchFromPath(w, r)
	if !ok {
		return
	}
	var req directorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusCreated, s.Director.Alert(b, req.Message))
}

func (s *Server) handleBranchVerify(w http.ResponseWriter, r *http.Request) {
	b, ok := s.branchFromPath(w, r)
	if !ok {
		return
	}
	var req directorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusCreated, s.Director.Verify(b, req.Message))
}

func (s *Server) handleBranchReport(w http.ResponseWriter, r *http.Request) {
	b, ok := s.branchFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusCreated, s.Director.Report(b))
}

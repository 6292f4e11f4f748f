package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"creditflow/selection"
)

var errNoMirror = errors.New("httpapi: selection persistence not configured")

func (s *Server) loadStore(r *http.Request) (*selection.Store, string, error) {
	if s.mirror == nil {
		return nil, "", errNoMirror
	}
	userID := userIDFrom(r.Context())
	store, err := s.mirror.Load(r.Context(), userID)
	if err != nil {
		return nil, "", err
	}
	return store, userID, nil
}

func (s *Server) saveStore(r *http.Request, userID string, store *selection.Store) error {
	return s.mirror.Save(r.Context(), userID, store)
}

func (s *Server) handleListSelections(w http.ResponseWriter, r *http.Request) {
	store, _, err := s.loadStore(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"items": store.Items(),
		"limit": selection.MaxSelections,
	})
}

func (s *Server) handleAddSelection(w http.ResponseWriter, r *http.Request) {
	var item selection.Selection
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}

	store, userID, err := s.loadStore(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := store.Add(item); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveStore(r, userID, store); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"items": store.Items()})
}

func (s *Server) handleUpdateSelection(w http.ResponseWriter, r *http.Request) {
	var patch selection.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.writeError(w, r, errBadBody)
		return
	}

	store, userID, err := s.loadStore(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := store.Update(r.PathValue("id"), patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.saveStore(r, userID, store); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": store.Items()})
}

func (s *Server) handleRemoveSelection(w http.ResponseWriter, r *http.Request) {
	store, userID, err := s.loadStore(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !store.Remove(r.PathValue("id")) {
		s.writeError(w, r, selection.ErrNotFound)
		return
	}
	if err := s.saveStore(r, userID, store); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"items": store.Items()})
}

func (s *Server) handleResetSelections(w http.ResponseWriter, r *http.Request) {
	if s.mirror == nil {
		s.writeError(w, r, errNoMirror)
		return
	}
	userID := userIDFrom(r.Context())
	if err := s.mirror.Clear(r.Context(), userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

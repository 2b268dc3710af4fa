package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type nightLightRequest struct {
	SceneID string `json:"scene_id"`
}

func (s *Server) handleListNightLights(w http.ResponseWriter, _ *http.Request) {
	lights := s.core.NightLightsResolved()
	writeJSON(w, http.StatusOK, map[string]any{"night_lights": lights, "count": len(lights)})
}

// handleGetNightLight resolves a device's assignment. missing is set when
// the scene list is loaded and no longer contains the assigned scene.
func (s *Server) handleGetNightLight(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.core.NightLight(chi.URLParam(r, "deviceID")))
}

func (s *Server) handleAssignNightLight(w http.ResponseWriter, r *http.Request) {
	var req nightLightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	res, err := s.core.AssignNightLight(r.Context(), chi.URLParam(r, "deviceID"), req.SceneID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRemoveNightLight(w http.ResponseWriter, r *http.Request) {
	s.core.NightLights.Remove(r.Context(), chi.URLParam(r, "deviceID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRunNightLight(w http.ResponseWriter, r *http.Request) {
	ex, err := s.core.RunNightLight(r.Context(), chi.URLParam(r, "deviceID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

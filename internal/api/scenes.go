package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/0suu/SwitchBotController/internal/automation"
)

func (s *Server) handleListScenes(w http.ResponseWriter, _ *http.Request) {
	view := s.core.Scenes.View()
	scenes := s.core.OrderedScenes()
	writeJSON(w, http.StatusOK, map[string]any{
		"scenes":                 scenes,
		"count":                  len(scenes),
		"loading":                view.Loading,
		"error":                  view.Error,
		"last_fetched":           view.LastFetched,
		"executing":              view.Executing,
		"execution_errors":       view.ExecutionErrors,
		"last_executed_scene_id": view.LastExecutedSceneID,
	})
}

func (s *Server) handleRefreshScenes(w http.ResponseWriter, r *http.Request) {
	if _, err := s.core.Scenes.Fetch(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	scenes := s.core.OrderedScenes()
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes, "count": len(scenes)})
}

// handleExecuteScene runs a scene. Once the scene list is loaded, ids not
// in it are rejected without calling the cloud.
func (s *Server) handleExecuteScene(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.core.Scenes.Scene(id); !ok && s.core.Scenes.Loaded() {
		writeServiceError(w, fmt.Errorf("%w: %s", automation.ErrSceneNotFound, id))
		return
	}

	ex, err := s.core.Scenes.Execute(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handleClearSceneError(w http.ResponseWriter, r *http.Request) {
	s.core.Scenes.ClearExecutionError(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetSceneOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": s.core.SetSceneOrder(r.Context(), req.IDs)})
}

func (s *Server) handleSceneReorder(w http.ResponseWriter, r *http.Request) {
	s.reorder(w, r, reorderOps{
		start:  s.core.StartSceneReorder,
		move:   s.core.SceneOrder.Move,
		commit: s.core.CommitSceneReorder,
		cancel: s.core.SceneOrder.Cancel,
	})
}

// ─── Reorder ────────────────────────────────────────────────────────

type reorderOps struct {
	start  func() []string
	move   func(from, to string) ([]string, error)
	commit func(ctx context.Context) ([]string, error)
	cancel func()
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request, ops reorderOps) {
	switch action := chi.URLParam(r, "action"); action {
	case "start":
		writeJSON(w, http.StatusOK, map[string]any{"ids": ops.start()})
	case "move":
		var req moveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}
		ids, err := ops.move(req.From, req.To)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
	case "commit":
		ids, err := ops.commit(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ids": ids})
	case "cancel":
		ops.cancel()
		w.WriteHeader(http.StatusNoContent)
	default:
		writeNotFound(w, "unknown reorder action: "+action)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/0suu/SwitchBotController/internal/device"
	"github.com/0suu/SwitchBotController/internal/orchestrator"
)

type orderRequest struct {
	IDs []string `json:"ids"`
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// handleListDevices returns the ordered device list.
//
// Query parameters:
//   - all: include devices of hidden families (hubs, cameras, ...)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all")) //nolint:errcheck // absent or malformed means false
	view := s.core.Devices.View()
	devices := s.core.DeviceInfos(all)
	writeJSON(w, http.StatusOK, map[string]any{
		"devices":         devices,
		"count":           len(devices),
		"loading":         view.Loading,
		"error":           view.Error,
		"last_fetched":    view.LastFetched,
		"command_sending": view.CommandSending,
		"command_error":   view.CommandError,
		"polling":         view.Polling,
	})
}

func (s *Server) handleRefreshDevices(w http.ResponseWriter, r *http.Request) {
	if _, err := s.core.Devices.FetchDevices(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	devices := s.core.DeviceInfos(false)
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	info, err := s.core.DeviceInfo(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleGetDeviceStatus selects the device and fetches a fresh status.
// A failed fetch still answers with the selection, which carries the
// error and the last good snapshot.
func (s *Server) handleGetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.core.Devices.Device(id); !ok {
		writeNotFound(w, "device not found")
		return
	}
	sel, err := s.core.Devices.Select(r.Context(), id)
	if err != nil && errors.Is(err, device.ErrUnauthenticated) {
		writeServiceError(w, err)
		return
	}
	info, _ := s.core.DeviceInfo(id) //nolint:errcheck // existence checked above
	writeJSON(w, http.StatusOK, map[string]any{
		"selected": sel,
		"device":   info,
	})
}

// handleSendCommand dispatches a command and waits for the cloud's answer.
//
// Body: {"command","parameter","command_type"} or {"command_label","value"}.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req orchestrator.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	ev, err := s.core.SendCommand(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleClearDeviceError(w http.ResponseWriter, r *http.Request) {
	s.core.Devices.ClearCommandError(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDeviceOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ids": s.core.SetDeviceOrder(r.Context(), req.IDs)})
}

// handleDeviceReorder drives the staged reorder: start, move, commit, cancel.
func (s *Server) handleDeviceReorder(w http.ResponseWriter, r *http.Request) {
	s.reorder(w, r, reorderOps{
		start:  s.core.StartDeviceReorder,
		move:   s.core.DeviceOrder.Move,
		commit: s.core.CommitDeviceReorder,
		cancel: s.core.DeviceOrder.Cancel,
	})
}

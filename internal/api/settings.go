package api

import (
	"encoding/json"
	"net/http"

	"github.com/0suu/SwitchBotController/internal/credential"
	"github.com/0suu/SwitchBotController/internal/settings"
)

// CredentialsView is the credential state as exposed to clients. The
// pair itself never leaves the server.
type CredentialsView struct {
	Configured bool   `json:"configured"`
	Validated  bool   `json:"validated"`
	Testing    bool   `json:"testing"`
	Message    string `json:"message,omitempty"`
}

func credentialsView(st credential.State) CredentialsView {
	return CredentialsView{
		Configured: st.HasPair(),
		Validated:  st.Validated,
		Testing:    st.Testing,
		Message:    st.Message,
	}
}

type settingsResponse struct {
	Credentials CredentialsView      `json:"credentials"`
	Preferences settings.Preferences `json:"preferences"`
	Polling     pollingView          `json:"polling"`
}

type pollingView struct {
	Running         bool `json:"running"`
	IntervalSeconds int  `json:"interval_seconds"`
}

type credentialsRequest struct {
	Token  string `json:"token"`
	Secret string `json:"secret"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Credentials: credentialsView(s.core.Credentials.State()),
		Preferences: s.core.Settings.Get(),
		Polling: pollingView{
			Running:         s.core.Poller.Running(),
			IntervalSeconds: int(s.core.Poller.Interval().Seconds()),
		},
	})
}

// handleSetCredentials validates and stores a new pair. A rejected pair
// leaves the previous one in place; the response carries the resulting
// state either way.
func (s *Server) handleSetCredentials(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	st, err := s.core.Credentials.ValidateAndCommit(r.Context(), req.Token, req.Secret)
	if err != nil {
		status, code := classify(err)
		writeJSON(w, status, map[string]any{
			"error":       Error{Code: code, Message: err.Error()},
			"credentials": credentialsView(st),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": credentialsView(st)})
}

func (s *Server) handleClearCredentials(w http.ResponseWriter, r *http.Request) {
	if err := s.core.Credentials.Clear(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": credentialsView(s.core.Credentials.State())})
}

func (s *Server) handleTestCredentials(w http.ResponseWriter, r *http.Request) {
	st, err := s.core.Credentials.TestStored(r.Context())
	if err != nil {
		status, code := classify(err)
		writeJSON(w, status, map[string]any{
			"error":       Error{Code: code, Message: err.Error()},
			"credentials": credentialsView(st),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"credentials": credentialsView(st)})
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch settings.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	prefs, err := s.core.Settings.Update(r.Context(), patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

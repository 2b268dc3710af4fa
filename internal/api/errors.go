package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/0suu/SwitchBotController/internal/automation"
	"github.com/0suu/SwitchBotController/internal/credential"
	"github.com/0suu/SwitchBotController/internal/device"
	"github.com/0suu/SwitchBotController/internal/orchestrator"
	"github.com/0suu/SwitchBotController/internal/ordering"
	"github.com/0suu/SwitchBotController/internal/settings"
	"github.com/0suu/SwitchBotController/internal/store"
	"github.com/0suu/SwitchBotController/internal/switchbot"
)

// Error is the body of every error response, wrapped as {"error": ...}.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorBody struct {
	Error Error `json:"error"`
}

// Error codes.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeUnauthorized     = "unauthorised"
	ErrCodeConflict         = "conflict"
	ErrCodeInternal         = "internal_error"
	ErrCodeValidation       = "validation_error"
	ErrCodeUnauthenticated  = "credentials_required"
	ErrCodeValidationFailed = "credential_validation_failed"
	ErrCodeUpstream         = "upstream_error"
	ErrCodePersistence      = "persistence_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: Error{Code: code, Message: message}})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps an error from the core packages to a response.
// The message is the error's own text, which for cloud failures is the
// SwitchBot message verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var apiErr *switchbot.APIError
	switch {
	case errors.Is(err, credential.ErrNotValidated):
		return http.StatusPreconditionFailed, ErrCodeUnauthenticated
	case errors.Is(err, credential.ErrValidationFailed):
		return http.StatusUnprocessableEntity, ErrCodeValidationFailed
	case errors.Is(err, credential.ErrEmpty),
		errors.Is(err, credential.ErrNotSet),
		errors.Is(err, settings.ErrInvalidInterval),
		errors.Is(err, settings.ErrInvalidValue),
		errors.Is(err, device.ErrUnknownCommand),
		errors.Is(err, orchestrator.ErrInvalidCommand):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, device.ErrDeviceNotFound),
		errors.Is(err, automation.ErrSceneNotFound),
		errors.Is(err, automation.ErrNoNightLight),
		errors.Is(err, switchbot.ErrDeviceNotFound),
		errors.Is(err, switchbot.ErrSceneNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, ordering.ErrNotReordering),
		errors.Is(err, device.ErrNoDevices):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, store.ErrPersistence):
		return http.StatusInternalServerError, ErrCodePersistence
	case errors.As(err, &apiErr), errors.Is(err, switchbot.ErrTransport):
		return http.StatusBadGateway, ErrCodeUpstream
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by switchbotd. Values are JSON documents.
const (
	KeyAPIToken         = "apiToken"
	KeyAPISecret        = "apiSecret"
	KeyPollingInterval  = "pollingIntervalSeconds"
	KeyTheme            = "theme"
	KeyLanguage         = "language"
	KeyDeviceOrder      = "deviceOrder"
	KeySceneOrder       = "sceneOrder"
	KeyLastView         = "lastView"
	KeyNightLightScenes = "nightLightScenes"
)

// ErrPersistence wraps every failed write or delete.
var ErrPersistence = errors.New("store: persistence failed")

// Store is a durable key/value map. Get reports found=false for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	GetAll(ctx context.Context) (map[string][]byte, error)
}

// GetJSON decodes the value under key into dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// GetString returns the string stored under key. A value that is not a
// JSON string is treated as absent.
func GetString(ctx context.Context, s Store, key string) (string, bool, error) {
	var v string
	found, err := GetJSON(ctx, s, key, &v)
	if err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, found, nil
}

func persistErr(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistence, op, key, err)
}

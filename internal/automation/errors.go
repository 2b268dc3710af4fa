package automation

import (
	"errors"

	"github.com/0suu/SwitchBotController/internal/credential"
)

// MsgCheckSettings is the list-level error set when scenes are fetched
// without validated credentials.
const MsgCheckSettings = "API credentials are not set or not validated. Please check settings."

var (
	// ErrUnauthenticated is returned without any network call when the
	// credentials are not validated. It is credential.ErrNotValidated.
	ErrUnauthenticated = credential.ErrNotValidated

	// ErrSceneNotFound is returned when a scene id is not in the loaded list.
	ErrSceneNotFound = errors.New("scene: not found")

	// ErrNoNightLight is returned when a device has no night-light scene.
	ErrNoNightLight = errors.New("night light: not assigned")
)

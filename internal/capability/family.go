package capability

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// Device is the subset of a device record that classification needs.
type Device struct {
	DeviceType       string
	RemoteType       string
	IsInfraredRemote bool
}

// Family holds the behavioural switches derived from a device's type label.
//
// These are substring tests kept apart from the profile table because some
// switches are finer than the table (deadbolt support excludes Lock Lite).
// Families that correspond to profiles (ceiling light, lights, vacuums) also
// accept a match through the resolved profile key, so every table matcher
// lands in its family. All physical-device flags are false for infrared
// remotes; the Remote* flags are only set for them.
type Family struct {
	ProfileKey string
	Infrared   bool

	Bot                   bool
	Plug                  bool
	PlugMini              bool
	Curtain               bool
	Lock                  bool
	LockLite              bool
	LockPro               bool
	LockUltra             bool
	CeilingLight          bool
	FloorLamp             bool
	StripLight            bool
	StripLight3           bool
	ColorBulb             bool
	Light                 bool
	Humidifier            bool
	EvaporativeHumidifier bool
	Fan                   bool
	Vacuum                bool

	RemoteDefaultCommands bool
	RemoteAC              bool
	RemoteTV              bool
	RemoteSpeaker         bool
	RemoteFan             bool
	RemoteLight           bool
}

var lightProfiles = map[string]bool{
	"ceilingLight": true,
	"rgbLights":    true,
	"stripLight":   true,
	"stripLight3":  true,
	"colorBulb":    true,
}

// Classify derives the family flags for a device.
func Classify(d Device) Family {
	label := d.DeviceType
	if label == "" {
		label = d.RemoteType
	}
	t := Normalize(label)
	compact := nonAlphanumeric.ReplaceAllString(t, "")
	has := func(sub string) bool { return strings.Contains(t, sub) }

	f := Family{Infrared: d.IsInfraredRemote}
	if p, ok := Resolve(label); ok {
		f.ProfileKey = p.Key
	}

	remoteLabel := d.RemoteType
	if remoteLabel == "" {
		remoteLabel = d.DeviceType
	}
	rt := Normalize(remoteLabel)
	f.RemoteDefaultCommands = rt != "others"

	if d.IsInfraredRemote {
		f.RemoteAC = strings.Contains(rt, "air conditioner")
		f.RemoteTV = strings.Contains(rt, "tv") || strings.Contains(rt, "streamer") || strings.Contains(rt, "set top")
		f.RemoteSpeaker = strings.Contains(rt, "speaker") || strings.Contains(rt, "dvd")
		f.RemoteFan = strings.Contains(rt, "fan")
		f.RemoteLight = strings.Contains(rt, "light")
		return f
	}

	f.Bot = t == "bot"
	f.Plug = has("plug")
	f.PlugMini = has("plug mini")
	f.Curtain = has("curtain") || has("blind tilt")
	f.Lock = has("lock")
	f.LockLite = has("lock lite")
	f.LockPro = has("lock pro")
	f.LockUltra = has("lock ultra")
	f.CeilingLight = f.ProfileKey == "ceilingLight" || strings.Contains(compact, "ceilinglight")
	f.FloorLamp = has("floor lamp")
	f.StripLight3 = has("strip light 3")
	f.StripLight = has("strip light")
	f.ColorBulb = has("bulb")
	f.Light = f.CeilingLight || f.FloorLamp || f.StripLight || f.StripLight3 || f.ColorBulb ||
		has("light") || lightProfiles[f.ProfileKey]
	f.Humidifier = has("humidifier")
	f.EvaporativeHumidifier = f.Humidifier && (has("evaporative") || has("humidifier2"))
	f.Fan = has("fan")
	f.Vacuum = has("vacuum") || has("cleaner") || strings.HasPrefix(f.ProfileKey, "vacuum")
	return f
}

// SupportsPlugToggle is false: plugs are driven with explicit on/off only.
func (f Family) SupportsPlugToggle() bool { return false }

func (f Family) SupportsLightToggle() bool { return f.Light }

func (f Family) SupportsLightBrightness() bool {
	return f.ColorBulb || f.StripLight || f.StripLight3 || f.FloorLamp || f.CeilingLight
}

func (f Family) SupportsLightColorTemperature() bool {
	return f.ColorBulb || f.StripLight3 || f.FloorLamp || f.CeilingLight
}

func (f Family) SupportsLightColor() bool {
	return f.ColorBulb || f.StripLight || f.StripLight3 || f.FloorLamp
}

// SupportsLockDeadbolt excludes Lock Lite, which has no deadbolt mode.
func (f Family) SupportsLockDeadbolt() bool {
	return (f.Lock && !f.LockLite) || f.LockPro || f.LockUltra
}

// HasPredefinedControls reports whether a dedicated control set exists for
// the device, as opposed to only the generic command list.
func (f Family) HasPredefinedControls() bool {
	return f.Infrared || f.Bot || f.Plug || f.Curtain || f.Lock || f.Light || f.Humidifier || f.Fan || f.Vacuum
}

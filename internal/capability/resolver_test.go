package capability

import (
	"encoding/json"
	"strings"
	"testing"
)

// ─── Resolve ────────────────────────────────────────────────────────

func TestResolve(t *testing.T) {
	tests := []struct {
		label   string
		wantKey string
		wantOK  bool
	}{
		{"Bot", "bot", true},
		{"  CURTAIN 3 ", "curtain", true},
		{"Curtain", "curtain", true},
		{"Blind Tilt", "blindTilt", true},
		{"Smart Lock Pro", "lock", true},
		{"Lock Lite", "lockLite", true},
		{"Plug Mini (JP)", "plugMini", true},
		{"Plug Mini (US)", "plugMini", true},
		{"Plug", "plug", true},
		{"Relay Switch 1PM", "relaySwitchSingle", true},
		{"Relay Switch 2PM", "relaySwitchDual", true},
		{"Humidifier", "humidifier", true},
		{"Humidifier2", "evaporativeHumidifier", true},
		{"Evaporative Humidifier", "evaporativeHumidifier", true},
		{"Air Purifier Table VOC", "airPurifier", true},
		{"Smart Radiator Thermostat", "smartRadiator", true},
		{"Battery Circulator Fan", "fan", true},
		{"Robot Vacuum Cleaner S1 Plus", "vacuumBasic", true},
		{"K10+ Pro Combo", "vacuumAdvancedK10Combo", true},
		{"K20+ Pro", "vacuumAdvancedK20", true},
		{"Floor Cleaning Robot S10", "vacuumS10S20", true},
		{"K11+", "vacuumK11", true},
		{"Ceiling Light Pro", "ceilingLight", true},
		{"RGBICWW Floor Lamp", "rgbLights", true},
		{"Strip Light", "stripLight", true},
		{"Strip Light 3", "stripLight3", true},
		{"Color Bulb", "colorBulb", true},
		{"Water Detector", "waterLeak", true},
		{"Meter Pro CO2", "meter", true},
		{"Hub 2", "hub2", true},
		{"Hub 3", "hub3", true},
		{"Hub Mini", "hub", true},
		{"Video Doorbell", "videoDoorbell", true},
		{"Keypad Touch", "keypad", true},
		{"Contact Sensor", "motionSensor", true},
		{"Remote", "remoteButton", true},
		{"Pan/Tilt Cam 2K", "camera", true},
		{"Teleporter", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			p, ok := Resolve(tt.label)
			if ok != tt.wantOK || p.Key != tt.wantKey {
				t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.label, p.Key, ok, tt.wantKey, tt.wantOK)
			}
		})
	}
}

func TestResolve_LongestMatchBeatsGenericToken(t *testing.T) {
	// "plug mini (jp)" contains both "plug mini" and "plug".
	p, _ := Resolve("Plug Mini (JP)")
	if p.Key != "plugMini" {
		t.Fatalf("Resolve(Plug Mini (JP)) = %q, want plugMini", p.Key)
	}
	generic, _ := Resolve("Plug")
	if generic.Key == p.Key {
		t.Fatal("generic plug and plug mini resolved to the same profile")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	for _, def := range Profiles() {
		for _, token := range def.Matchers {
			first, _ := Resolve(token)
			for i := 0; i < 5; i++ {
				again, _ := Resolve(strings.ToUpper(token))
				if again.Key != first.Key {
					t.Fatalf("Resolve(%q) not stable: %q then %q", token, first.Key, again.Key)
				}
			}
		}
	}
}

func TestResolve_EveryMatcherSelectsItsOwnProfile(t *testing.T) {
	for _, def := range Profiles() {
		for _, token := range def.Matchers {
			if p, ok := Resolve(token); !ok || p.Key != def.Key {
				t.Errorf("Resolve(%q) = %q, want owning profile %q", token, p.Key, def.Key)
			}
		}
	}
}

func TestResolve_TieGoesToFirstRegistered(t *testing.T) {
	orig := definitions
	t.Cleanup(func() { definitions = orig })

	definitions = []Profile{
		{Key: "first", Matchers: []string{"widget"}},
		{Key: "second", Matchers: []string{"widget"}},
	}
	if p, _ := Resolve("Widget"); p.Key != "first" {
		t.Errorf("Resolve(Widget) = %q, want first", p.Key)
	}
}

func TestProfiles_UniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range Profiles() {
		if seen[p.Key] {
			t.Errorf("duplicate profile key %q", p.Key)
		}
		seen[p.Key] = true
		if len(p.Matchers) == 0 {
			t.Errorf("profile %q has no matchers", p.Key)
		}
		for _, m := range p.Matchers {
			if m != Normalize(m) {
				t.Errorf("profile %q matcher %q is not normalized", p.Key, m)
			}
		}
	}
}

// ─── Visibility ─────────────────────────────────────────────────────

func TestShouldHide(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"Hub Mini", true},
		{"Remote", true},
		{"Motion Sensor", true},
		{"Bot", false},
		{"Meter", false}, // status fields only
		{"Keypad", false}, // commands only
		{"Teleporter", false},
	}

	for _, tt := range tests {
		if got := ShouldHide(tt.label); got != tt.want {
			t.Errorf("ShouldHide(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestShouldHide_EmptyProfile(t *testing.T) {
	orig := definitions
	t.Cleanup(func() { definitions = orig })

	definitions = append([]Profile{{Key: "bare", Matchers: []string{"bare"}}}, orig...)
	if !ShouldHide("Bare") {
		t.Error("profile without commands or status fields should hide")
	}
}

func TestHasCommandsAndStatusFields(t *testing.T) {
	if !HasCommands("Bot") {
		t.Error("HasCommands(Bot) = false")
	}
	if HasCommands("Meter") {
		t.Error("HasCommands(Meter) = true")
	}
	if HasCommands("Teleporter") {
		t.Error("HasCommands(Teleporter) = true")
	}
	if got := len(StatusFieldsFor("Meter")); got != 3 {
		t.Errorf("len(StatusFieldsFor(Meter)) = %d, want 3", got)
	}
	if got := StatusFieldsFor("Teleporter"); got != nil {
		t.Errorf("StatusFieldsFor(Teleporter) = %v, want nil", got)
	}
}

func TestProfile_FindCommand(t *testing.T) {
	p, _ := Resolve("Curtain")

	c, ok := p.FindCommand("Open")
	if !ok || c.Command != "turnOn" {
		t.Errorf("FindCommand(Open) = %+v, %v", c, ok)
	}
	c, ok = p.FindCommand("setPosition")
	if !ok || c.Label != "Set Position" {
		t.Errorf("FindCommand(setPosition) = %+v, %v", c, ok)
	}
	if _, ok := p.FindCommand("selfDestruct"); ok {
		t.Error("FindCommand(selfDestruct) found a command")
	}
}

// ─── JSON ───────────────────────────────────────────────────────────

func TestCommand_MarshalJSON(t *testing.T) {
	p, _ := Resolve("Curtain")

	raw, err := json.Marshal(p.Commands)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var got []struct {
		Command     string         `json:"command"`
		CommandType string         `json:"command_type"`
		Parameter   map[string]any `json:"parameter"`
	}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}

	if got[0].Parameter["type"] != string(ParamNone) || got[0].CommandType != CommandTypeCommand {
		t.Errorf("Open command JSON = %+v", got[0])
	}
	pos := got[3]
	if pos.Parameter["type"] != string(ParamRange) || pos.Parameter["max"] != float64(100) || pos.Parameter["default"] != float64(50) {
		t.Errorf("Set Position parameter JSON = %v", pos.Parameter)
	}
}

package capability

import "encoding/json"

// Command types accepted by the cloud API.
const (
	CommandTypeCommand   = "command"
	CommandTypeCustomize = "customize"
)

// DefaultParameter is sent for commands that take no argument.
const DefaultParameter = "default"

// ParamKind tags the concrete Parameter type.
type ParamKind string

const (
	ParamNone  ParamKind = "none"
	ParamRange ParamKind = "range"
	ParamEnum  ParamKind = "enum"
	ParamText  ParamKind = "text"
)

// Parameter describes the argument a command takes. It is one of Range,
// Enum or Text; a nil Parameter means the command takes none.
type Parameter interface {
	Kind() ParamKind
}

// Range is a numeric slider.
type Range struct {
	Min     float64
	Max     float64
	Step    float64
	Default float64
	Unit    string

	// Map converts the slider value into the literal sent to the device.
	// A nil Map sends the number itself.
	Map func(v float64) any
}

// Option is one selectable Enum value.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Enum is a fixed choice. A nil Default means none is preselected.
type Enum struct {
	Options []Option
	Default any
}

// Text is free-form input, optionally decoded as JSON before sending.
type Text struct {
	Default     string
	Placeholder string
	Help        string
	ParseAsJSON bool
	Multiline   bool
}

func (Range) Kind() ParamKind { return ParamRange }
func (Enum) Kind() ParamKind  { return ParamEnum }
func (Text) Kind() ParamKind  { return ParamText }

// Command is one entry in a profile's command list.
type Command struct {
	Label       string
	Command     string
	CommandType string // empty means CommandTypeCommand
	Parameter   Parameter
}

// Type returns the command type, defaulting to CommandTypeCommand.
func (c Command) Type() string {
	if c.CommandType == "" {
		return CommandTypeCommand
	}
	return c.CommandType
}

// Formatter renders one status value. status is the whole snapshot, for
// fields derived from several readings.
type Formatter func(value any, status map[string]any) string

// StatusField is one displayable key of a status snapshot.
type StatusField struct {
	Key    string
	Label  string
	Unit   string
	Format Formatter
}

// Profile is a classified device family. Profiles returned by this package
// share their slices with the static table and must not be modified.
type Profile struct {
	Key          string
	Matchers     []string
	Commands     []Command
	StatusFields []StatusField
	Hidden       bool
}

// ─── JSON views ─────────────────────────────────────────────────────

func (r Range) MarshalJSON() ([]byte, error) {
	step := r.Step
	if step == 0 {
		step = 1
	}
	return json.Marshal(struct {
		Type    ParamKind `json:"type"`
		Min     float64   `json:"min"`
		Max     float64   `json:"max"`
		Step    float64   `json:"step"`
		Default float64   `json:"default"`
		Unit    string    `json:"unit,omitempty"`
	}{ParamRange, r.Min, r.Max, step, r.Default, r.Unit})
}

func (e Enum) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ParamKind `json:"type"`
		Options []Option  `json:"options"`
		Default any       `json:"default,omitempty"`
	}{ParamEnum, e.Options, e.Default})
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        ParamKind `json:"type"`
		Default     string    `json:"default,omitempty"`
		Placeholder string    `json:"placeholder,omitempty"`
		Help        string    `json:"help,omitempty"`
		ParseAsJSON bool      `json:"parse_as_json,omitempty"`
		Multiline   bool      `json:"multiline,omitempty"`
	}{ParamText, t.Default, t.Placeholder, t.Help, t.ParseAsJSON, t.Multiline})
}

func (c Command) MarshalJSON() ([]byte, error) {
	var param any = map[string]ParamKind{"type": ParamNone}
	if c.Parameter != nil {
		param = c.Parameter
	}
	return json.Marshal(struct {
		Label       string `json:"label"`
		Command     string `json:"command"`
		CommandType string `json:"command_type"`
		Parameter   any    `json:"parameter"`
	}{c.Label, c.Command, c.Type(), param})
}

func (f StatusField) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key   string `json:"key"`
		Label string `json:"label"`
		Unit  string `json:"unit,omitempty"`
	}{f.Key, f.Label, f.Unit})
}

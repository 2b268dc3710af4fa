package capability

import "strings"

// Normalize trims and lowercases a device type label.
func Normalize(deviceType string) string {
	return strings.ToLower(strings.TrimSpace(deviceType))
}

// Resolve returns the profile whose matcher is the longest substring of the
// normalized device type. ok is false when nothing matches; such devices are
// still listed but expose no commands or status fields.
func Resolve(deviceType string) (p Profile, ok bool) {
	idx := resolveIndex(Normalize(deviceType))
	if idx < 0 {
		return Profile{}, false
	}
	return definitions[idx], true
}

func resolveIndex(normalized string) int {
	best, bestLen := -1, 0
	for i, def := range definitions {
		for _, token := range def.Matchers {
			// Strictly longer only: on a tie the earlier entry keeps the win.
			if len(token) > bestLen && strings.Contains(normalized, token) {
				best, bestLen = i, len(token)
			}
		}
	}
	return best
}

// ShouldHide reports whether a device type is kept out of user-facing lists:
// its profile is flagged hidden, or it has neither commands nor status
// fields. Unclassified types are not hidden.
func ShouldHide(deviceType string) bool {
	p, ok := Resolve(deviceType)
	if !ok {
		return false
	}
	return p.Hidden || (len(p.Commands) == 0 && len(p.StatusFields) == 0)
}

// HasCommands reports whether the device type's profile defines any command.
func HasCommands(deviceType string) bool {
	p, ok := Resolve(deviceType)
	return ok && len(p.Commands) > 0
}

// StatusFieldsFor returns the status fields of the device type's profile.
func StatusFieldsFor(deviceType string) []StatusField {
	p, _ := Resolve(deviceType)
	return p.StatusFields
}

// FindCommand looks up a profile command by label, falling back to the
// first command with a matching command name.
func (p Profile) FindCommand(labelOrCommand string) (Command, bool) {
	for _, c := range p.Commands {
		if c.Label == labelOrCommand {
			return c, true
		}
	}
	for _, c := range p.Commands {
		if c.Command == labelOrCommand {
			return c, true
		}
	}
	return Command{}, false
}

// Profiles returns the profile table in registration order.
func Profiles() []Profile {
	out := make([]Profile, len(definitions))
	copy(out, definitions)
	return out
}

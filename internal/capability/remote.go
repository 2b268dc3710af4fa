package capability

// RemoteProfileKey is the profile key reported for infrared remotes.
const RemoteProfileKey = "infraredRemote"

// RemoteProfile builds the command set of an infrared remote from its
// family flags. Remotes have no queryable status, so the profile never
// carries status fields. A remote of type "Others" only takes custom
// commands and gets an empty list.
func RemoteProfile(f Family) Profile {
	var cmds []Command
	if f.RemoteDefaultCommands {
		cmds = append(cmds, cmd("On", "turnOn"), cmd("Off", "turnOff"))
	}
	switch {
	case f.RemoteAC:
		cmds = append(cmds, cmdWith("Set All", "setAll", Text{
			Default:     "26,1,1,on",
			Placeholder: "temperature,mode,fan speed,power",
			Help:        "mode 1 auto, 2 cool, 3 dry, 4 fan, 5 heat; fan 1 auto, 2 low, 3 medium, 4 high",
		}))
	case f.RemoteTV:
		cmds = append(cmds,
			cmd("Volume Up", "volumeAdd"),
			cmd("Volume Down", "volumeSub"),
			cmd("Channel Up", "channelAdd"),
			cmd("Channel Down", "channelSub"),
			cmdWith("Set Channel", "SetChannel", Text{Default: "1"}),
			cmd("Mute", "setMute"),
		)
	case f.RemoteSpeaker:
		cmds = append(cmds,
			cmd("Play", "Play"),
			cmd("Pause", "Pause"),
			cmd("Stop", "Stop"),
			cmd("Next", "Next"),
			cmd("Previous", "Previous"),
			cmd("Fast Forward", "FastForward"),
			cmd("Rewind", "Rewind"),
			cmd("Volume Up", "volumeAdd"),
			cmd("Volume Down", "volumeSub"),
		)
	case f.RemoteFan:
		cmds = append(cmds,
			cmd("Swing", "swing"),
			cmd("Timer", "timer"),
			cmd("Low Speed", "lowSpeed"),
			cmd("Middle Speed", "middleSpeed"),
			cmd("High Speed", "highSpeed"),
		)
	case f.RemoteLight:
		cmds = append(cmds,
			cmd("Brighter", "brightnessUp"),
			cmd("Dimmer", "brightnessDown"),
		)
	}
	return Profile{Key: RemoteProfileKey, Commands: cmds}
}

// ProfileFor resolves the profile for any device record: infrared remotes
// get their synthesized remote profile, physical devices the table entry.
func ProfileFor(d Device) (Profile, bool) {
	if d.IsInfraredRemote {
		return RemoteProfile(Classify(d)), true
	}
	return Resolve(d.DeviceType)
}

package capability

import (
	"fmt"
	"math"
)

func cmd(label, command string) Command {
	return Command{Label: label, Command: command}
}

func cmdWith(label, command string, p Parameter) Command {
	return Command{Label: label, Command: command, Parameter: p}
}

var (
	turnOn  = cmd("Turn On", "turnOn")
	turnOff = cmd("Turn Off", "turnOff")
	toggle  = cmd("Toggle", "toggle")

	onOff = []Command{turnOn, turnOff}

	setColor  = cmdWith("Color", "setColor", Text{Default: "255:255:255", Placeholder: "R:G:B (0-255)"})
	colorTemp = cmdWith("Color Temperature", "setColorTemperature",
		Range{Min: 2700, Max: 6500, Step: 100, Default: 4000, Unit: "K"})

	startCleanSweep = cmdWith("Start Clean", "startClean", Text{
		Default:     `{"action":"sweep","param":{"fanLevel":1,"times":1}}`,
		ParseAsJSON: true,
		Help:        "action sweep/mop, fanLevel 1-4, times 1+",
	})
	setVolume  = cmdWith("Set Volume", "setVolume", Range{Min: 0, Max: 100, Default: 50})
	changeFull = cmdWith("Change Params", "changeParam", Text{
		Default:     `{"fanLevel":1,"waterLevel":1,"times":1}`,
		ParseAsJSON: true,
		Help:        "fanLevel 1-4, waterLevel 1-2, times 1+",
	})
)

var (
	fieldPower      = StatusField{Key: "power", Label: "Power"}
	fieldBattery    = StatusField{Key: "battery", Label: "Battery", Unit: "%", Format: percent}
	fieldSlide      = StatusField{Key: "slidePosition", Label: "Pos", Unit: "%", Format: percent}
	fieldMoving     = StatusField{Key: "moving", Label: "Moving"}
	fieldMode       = StatusField{Key: "mode", Label: "Mode"}
	fieldOnline     = StatusField{Key: "onlineStatus", Label: "Online"}
	fieldWorking    = StatusField{Key: "workingStatus", Label: "Status"}
	fieldTask       = StatusField{Key: "taskType", Label: "Task"}
	fieldHumidity   = StatusField{Key: "humidity", Label: "Humidity", Unit: "%", Format: percent}
	fieldTemp       = StatusField{Key: "temperature", Label: "Temp", Unit: "°C", Format: celsius1}
	fieldBrightness = StatusField{Key: "brightness", Label: "Brightness", Unit: "%", Format: percent}
	fieldColorTemp  = StatusField{Key: "colorTemperature", Label: "ColorTemp", Unit: "K", Format: kelvin}
	fieldChildLock  = StatusField{Key: "childLock", Label: "ChildLock"}
	fieldLightLevel = StatusField{Key: "lightLevel", Label: "Light"}
	fieldPlugPower  = StatusField{Key: "power", Label: "Power", Unit: "W", Format: plugPower}

	vacuumFields = []StatusField{fieldWorking, fieldOnline, fieldBattery}
)

// curtainPosition encodes a 0-100 slider as the curtain's
// "index,mode,position" argument.
func curtainPosition(v float64) any {
	return fmt.Sprintf("0,ff,%d", int(math.Round(v)))
}

// definitions is the ordered profile table. Order matters only for ties.
var definitions = []Profile{
	{
		Key:      "bot",
		Matchers: []string{"bot"},
		Commands: []Command{turnOn, turnOff, cmd("Press", "press")},
	},
	{
		Key:      "curtain",
		Matchers: []string{"curtain 3", "curtain"},
		Commands: []Command{
			cmd("Open", "turnOn"),
			cmd("Pause", "pause"),
			cmd("Close", "turnOff"),
			cmdWith("Set Position", "setPosition",
				Range{Min: 0, Max: 100, Step: 1, Default: 50, Unit: "%", Map: curtainPosition}),
		},
		StatusFields: []StatusField{fieldSlide, fieldMoving, fieldBattery},
	},
	{
		Key:      "blindTilt",
		Matchers: []string{"blind tilt"},
		Commands: []Command{
			cmdWith("Set Position", "setPosition", Text{
				Default:     "up;100",
				Placeholder: "direction;position (e.g. up;60)",
				Help:        "direction: up/down, position 0-100 (multiple of 2)",
			}),
			cmd("Fully Open", "fullyOpen"),
			cmd("Close Up", "closeUp"),
			cmd("Close Down", "closeDown"),
		},
		StatusFields: []StatusField{fieldSlide, {Key: "direction", Label: "Dir"}, fieldMoving, fieldBattery},
	},
	{
		Key:      "rollerShade",
		Matchers: []string{"roller shade"},
		Commands: []Command{
			cmdWith("Set Position", "setPosition", Range{Min: 0, Max: 100, Default: 0, Unit: "%"}),
		},
		StatusFields: []StatusField{fieldSlide, fieldMoving, fieldBattery},
	},
	{
		Key:      "lock",
		Matchers: []string{"lock ultra", "lock pro", "lock"},
		Commands: []Command{cmd("Lock", "lock"), cmd("Unlock", "unlock"), cmd("Deadbolt", "deadbolt")},
		StatusFields: []StatusField{
			{Key: "lockState", Label: "Lock"},
			{Key: "doorState", Label: "Door"},
			fieldBattery,
		},
	},
	{
		Key:      "lockLite",
		Matchers: []string{"lock lite"},
		Commands: []Command{cmd("Lock", "lock"), cmd("Unlock", "unlock")},
	},
	{
		Key:          "plugMini",
		Matchers:     []string{"plug mini (us)", "plug mini (jp)", "plug mini (eu)", "plug mini"},
		Commands:     onOff,
		StatusFields: []StatusField{fieldPlugPower},
	},
	{
		Key:          "plug",
		Matchers:     []string{"plug"},
		Commands:     onOff,
		StatusFields: []StatusField{fieldPlugPower},
	},
	{
		Key:      "relaySwitchSingle",
		Matchers: []string{"relay switch 1pm", "relay switch 1"},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Set Mode", "setMode", Enum{
				Options: []Option{{"Toggle", 0}, {"Edge", 1}, {"Detached", 2}, {"Momentary", 3}},
				Default: 0,
			}),
		},
		StatusFields: []StatusField{fieldPower, fieldMode},
	},
	{
		Key:      "relaySwitchDual",
		Matchers: []string{"relay switch 2pm"},
		Commands: []Command{
			cmdWith("Turn On (ch1)", "turnOn", Text{Default: "1"}),
			cmdWith("Turn On (ch2)", "turnOn", Text{Default: "2"}),
			cmdWith("Turn Off (ch1)", "turnOff", Text{Default: "1"}),
			cmdWith("Turn Off (ch2)", "turnOff", Text{Default: "2"}),
			cmdWith("Toggle (ch1)", "toggle", Text{Default: "1"}),
			cmdWith("Toggle (ch2)", "toggle", Text{Default: "2"}),
			cmdWith("Set Mode", "setMode", Text{
				Default:     "1;0",
				Placeholder: "channel;mode (e.g. 1;0)",
				Help:        "Mode: 0 toggle, 1 edge, 2 detached, 3 momentary",
			}),
			cmdWith("Set Position", "setPosition", Range{Min: 0, Max: 100, Default: 0, Unit: "%"}),
		},
		StatusFields: []StatusField{fieldPower},
	},
	{
		Key:      "garageDoor",
		Matchers: []string{"garage door opener"},
		Commands: onOff,
	},
	{
		Key:      "humidifier",
		Matchers: []string{"humidifier"},
		Commands: []Command{
			turnOn, turnOff,
			cmdWith("Set Mode", "setMode", Text{
				Default:     "auto",
				Placeholder: "auto / 101 / 102 / 103 / 0-100",
				Help:        "Auto or atomization 34/67/100% (101-103) or 0-100",
			}),
		},
		StatusFields: []StatusField{
			fieldPower,
			fieldHumidity,
			fieldTemp,
			{Key: "nebulizationEfficiency", Label: "Output", Unit: "%", Format: percent},
			{Key: "lackWater", Label: "Water", Format: flag("Empty", "OK")},
		},
	},
	{
		Key:      "evaporativeHumidifier",
		Matchers: []string{"humidifier2", "evaporative humidifier"},
		Commands: []Command{
			turnOn, turnOff,
			cmdWith("Set Mode", "setMode", Text{
				Default:     `{"mode":1,"targetHumidify":60}`,
				ParseAsJSON: true,
				Help:        "mode 1-8, targetHumidify 0-100",
			}),
			cmdWith("Child Lock", "setChildLock", Enum{
				Options: []Option{{"Enable", true}, {"Disable", false}},
				Default: true,
			}),
		},
		StatusFields: []StatusField{
			fieldPower, fieldHumidity, fieldMode,
			{Key: "drying", Label: "Drying"},
			fieldChildLock,
		},
	},
	{
		Key:      "airPurifier",
		Matchers: []string{"air purifier voc", "air purifier table voc", "air purifier pm2.5", "air purifier table pm2.5"},
		Commands: []Command{
			turnOn, turnOff,
			cmdWith("Set Mode", "setMode", Text{
				Default:     `{"mode":1,"fanGear":1}`,
				ParseAsJSON: true,
				Help:        "mode 1 normal, 2 auto, 3 sleep, 4 pet; fanGear 1-3 when mode=1",
			}),
			cmdWith("Child Lock", "setChildLock", Enum{
				Options: []Option{{"Enable", 1}, {"Disable", 0}},
				Default: 1,
			}),
		},
		StatusFields: []StatusField{fieldPower, fieldMode, fieldChildLock},
	},
	{
		Key:      "smartRadiator",
		Matchers: []string{"smart radiato thermostat", "smart radiator thermostat"},
		Commands: []Command{
			turnOn, turnOff,
			cmdWith("Set Mode", "setMode", Range{Min: 0, Max: 5, Default: 1}),
			cmdWith("Set Manual Temperature", "setManualModeTemperature",
				Range{Min: 4, Max: 35, Default: 21, Unit: "°C"}),
		},
		StatusFields: []StatusField{
			{Key: "temperature", Label: "Temp", Unit: "°C", Format: celsius},
			{Key: "targetTemperature", Label: "Target", Unit: "°C", Format: celsius},
			fieldMode,
			fieldBattery,
		},
	},
	{
		Key:      "fan",
		Matchers: []string{"battery circulator fan", "circulator fan", "smart fan", "fan"},
		Commands: []Command{
			turnOn, turnOff,
			cmdWith("Nightlight", "setNightLightMode", Enum{
				Options: []Option{{"Off", "off"}, {"Bright", "1"}, {"Dim", "2"}},
				Default: "off",
			}),
			cmdWith("Wind Mode", "setWindMode", Enum{
				Options: []Option{{"Direct", "direct"}, {"Natural", "natural"}, {"Sleep", "sleep"}, {"Baby", "baby"}},
				Default: "direct",
			}),
			cmdWith("Wind Speed", "setWindSpeed", Range{Min: 1, Max: 100, Default: 50}),
		},
		StatusFields: []StatusField{
			fieldPower, fieldMode,
			{Key: "fanSpeed", Label: "Speed"},
			fieldBattery,
			{Key: "oscillation", Label: "Osc"},
		},
	},
	{
		Key:      "vacuumBasic",
		Matchers: []string{"robot vacuum cleaner s1", "robot vacuum cleaner s1 plus", "k10+", "k10+ pro"},
		Commands: []Command{
			cmd("Start", "start"),
			cmd("Stop", "stop"),
			cmd("Dock", "dock"),
			cmdWith("Suction (PowLevel)", "PowLevel", Range{Min: 0, Max: 3, Default: 1}),
		},
		StatusFields: vacuumFields,
	},
	{
		Key:          "vacuumAdvancedK20",
		Matchers:     []string{"k20+ pro", "multitasking household robot"},
		Commands:     []Command{startCleanSweep, cmd("Pause", "pause"), cmd("Dock", "dock"), setVolume, changeFull},
		StatusFields: []StatusField{fieldWorking, fieldTask, fieldOnline, fieldBattery},
	},
	{
		Key:      "vacuumAdvancedK10Combo",
		Matchers: []string{"k10+ pro combo", "robot vacuum cleaner k10+ pro combo"},
		Commands: []Command{
			startCleanSweep, cmd("Pause", "pause"), cmd("Dock", "dock"), setVolume,
			cmdWith("Change Params", "changeParam", Text{
				Default:     `{"fanLevel":1,"times":1}`,
				ParseAsJSON: true,
				Help:        "fanLevel 1-4, times 1+",
			}),
		},
		StatusFields: []StatusField{fieldWorking, fieldTask, fieldOnline, fieldBattery},
	},
	{
		Key:      "vacuumS10S20",
		Matchers: []string{"floor cleaning robot s10", "floor cleaning robot s20", "s20"},
		Commands: []Command{
			cmdWith("Start Clean", "startClean", Text{
				Default:     `{"action":"sweep","param":{"fanLevel":1,"waterLevel":1,"times":1}}`,
				ParseAsJSON: true,
				Help:        "action sweep/sweep_mop, fanLevel 1-4, waterLevel 1-2",
			}),
			cmd("Add Water", "addWaterForHumi"),
			cmd("Pause", "pause"),
			cmd("Dock", "dock"),
			setVolume,
			cmdWith("Self Clean", "selfClean", Enum{
				Options: []Option{{"Wash Mop", 1}, {"Dry", 2}, {"Terminate", 3}},
				Default: 1,
			}),
			changeFull,
		},
		StatusFields: vacuumFields,
	},
	{
		Key:          "vacuumK11",
		Matchers:     []string{"k11+"},
		Commands:     []Command{startCleanSweep, cmd("Pause", "pause"), cmd("Dock", "dock"), setVolume, changeFull},
		StatusFields: []StatusField{fieldWorking, fieldOnline, fieldBattery, fieldTask},
	},
	{
		Key:      "ceilingLight",
		Matchers: []string{"ceiling light pro", "ceiling light"},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Brightness", "setBrightness", Range{Min: 1, Max: 100, Default: 80, Unit: "%"}),
			colorTemp,
		},
		StatusFields: []StatusField{fieldPower, fieldBrightness, fieldColorTemp, fieldOnline},
	},
	{
		Key: "rgbLights",
		Matchers: []string{
			"rgbicww strip light",
			"rgbicww floor lamp",
			"rgbic neon wire rope light",
			"floor lamp",
			"rgbicww floor light",
			"rgbicww strip",
			"rgbic rope",
		},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Brightness", "setBrightness", Range{Min: 0, Max: 100, Default: 80, Unit: "%"}),
			colorTemp,
			setColor,
		},
		StatusFields: []StatusField{fieldPower, fieldBrightness, fieldColorTemp},
	},
	{
		Key:      "stripLight",
		Matchers: []string{"strip light"},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Brightness", "setBrightness", Range{Min: 1, Max: 100, Default: 80, Unit: "%"}),
			setColor,
		},
		StatusFields: []StatusField{fieldPower, fieldBrightness},
	},
	{
		Key:      "colorBulb",
		Matchers: []string{"color bulb"},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Brightness", "setBrightness", Range{Min: 1, Max: 100, Default: 80, Unit: "%"}),
			setColor,
			colorTemp,
		},
		StatusFields: []StatusField{fieldPower, fieldBrightness, fieldColorTemp},
	},
	{
		Key:      "waterLeak",
		Matchers: []string{"water leak detector", "water detector"},
		StatusFields: []StatusField{
			{Key: "status", Label: "Leak", Format: leakState},
			fieldBattery,
		},
	},
	{
		Key:      "meter",
		Matchers: []string{"meter plus", "meter pro co2", "meter pro", "outdoor meter", "meter"},
		StatusFields: []StatusField{
			fieldTemp, fieldHumidity,
			{Key: "CO2", Label: "CO2", Unit: "ppm", Format: ppm},
		},
	},
	{
		Key:          "hub2",
		Matchers:     []string{"hub 2"},
		StatusFields: []StatusField{fieldTemp, fieldHumidity, fieldLightLevel},
	},
	{
		Key:      "hub3",
		Matchers: []string{"hub 3"},
		StatusFields: []StatusField{
			fieldTemp, fieldHumidity, fieldLightLevel,
			{Key: "moveDetected", Label: "Motion", Format: flag("Detected", "Idle")},
		},
	},
	{
		Key:      "videoDoorbell",
		Matchers: []string{"video doorbell"},
		Commands: []Command{
			cmd("Enable Motion Detection", "enableMotionDetection"),
			cmd("Disable Motion Detection", "disableMotionDetection"),
		},
		StatusFields: []StatusField{fieldOnline},
	},
	{
		Key:      "keypad",
		Matchers: []string{"keypad touch", "keypad vision", "keypad"},
		Commands: []Command{
			cmdWith("Create Key", "createKey", Text{
				Default:     `{"name":"Guest","type":"permanent","password":"123456","startTime":1700000000,"endTime":1700003600}`,
				ParseAsJSON: true,
				Multiline:   true,
				Help:        "type permanent/timeLimit/disposable/urgent; timestamps in seconds",
			}),
			cmdWith("Delete Key", "deleteKey", Text{Default: `{"id":1}`, ParseAsJSON: true}),
		},
	},
	{
		Key:      "stripLight3",
		Matchers: []string{"strip light 3", "led strip light 3"},
		Commands: []Command{
			turnOn, turnOff, toggle,
			cmdWith("Brightness", "setBrightness", Range{Min: 0, Max: 100, Default: 80, Unit: "%"}),
			setColor,
			colorTemp,
		},
		StatusFields: []StatusField{fieldPower, fieldBrightness, fieldColorTemp},
	},
	{Key: "motionSensor", Matchers: []string{"motion sensor", "contact sensor"}, Hidden: true},
	{Key: "remoteButton", Matchers: []string{"remote"}, Hidden: true},
	{Key: "camera", Matchers: []string{"indoor cam", "pan/tilt cam", "pan/tilt cam 2k", "pan tilt cam"}, Hidden: true},
	{Key: "hub", Matchers: []string{"hub mini", "hub plus", "hub"}, Hidden: true},
}

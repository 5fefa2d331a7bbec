package input

// GamepadID identifies a connected gamepad.
type GamepadID uint32

// PadButton identifies a gamepad button using the positional layout
// (South is A on Xbox pads, Cross on PlayStation pads).
type PadButton uint8

const (
	PadButtonUnknown PadButton = iota
	PadSouth
	PadEast
	PadNorth
	PadWest
	PadLeftTrigger
	PadLeftTrigger2
	PadRightTrigger
	PadRightTrigger2
	PadSelect
	PadStart
	PadMode
	PadLeftThumb
	PadRightThumb
	PadDPadUp
	PadDPadDown
	PadDPadLeft
	PadDPadRight
)

var padButtonNames = [...]string{
	PadButtonUnknown: "Unknown",
	PadSouth:         "South",
	PadEast:          "East",
	PadNorth:         "North",
	PadWest:          "West",
	PadLeftTrigger:   "LeftTrigger",
	PadLeftTrigger2:  "LeftTrigger2",
	PadRightTrigger:  "RightTrigger",
	PadRightTrigger2: "RightTrigger2",
	PadSelect:        "Select",
	PadStart:         "Start",
	PadMode:          "Mode",
	PadLeftThumb:     "LeftThumb",
	PadRightThumb:    "RightThumb",
	PadDPadUp:        "DPadUp",
	PadDPadDown:      "DPadDown",
	PadDPadLeft:      "DPadLeft",
	PadDPadRight:     "DPadRight",
}

func (b PadButton) String() string {
	if int(b) < len(padButtonNames) {
		return padButtonNames[b]
	}
	return "Unknown"
}

// ParsePadButton accepts the names returned by String, ignoring case and underscores.
func ParsePadButton(s string) (PadButton, bool) {
	for i, name := range padButtonNames {
		if i != int(PadButtonUnknown) && equalFold(name, s) {
			return PadButton(i), true
		}
	}
	return PadButtonUnknown, false
}

// PadAxis identifies an analog gamepad axis.
type PadAxis uint8

const (
	PadAxisUnknown PadAxis = iota
	PadLeftStickX
	PadLeftStickY
	PadLeftZ
	PadRightStickX
	PadRightStickY
	PadRightZ
	PadDPadX
	PadDPadY
)

var padAxisNames = [...]string{
	PadAxisUnknown: "Unknown",
	PadLeftStickX:  "LeftStickX",
	PadLeftStickY:  "LeftStickY",
	PadLeftZ:       "LeftZ",
	PadRightStickX: "RightStickX",
	PadRightStickY: "RightStickY",
	PadRightZ:      "RightZ",
	PadDPadX:       "DPadX",
	PadDPadY:       "DPadY",
}

func (a PadAxis) String() string {
	if int(a) < len(padAxisNames) {
		return padAxisNames[a]
	}
	return "Unknown"
}

// ParsePadAxis accepts the names returned by String, ignoring case and underscores.
func ParsePadAxis(s string) (PadAxis, bool) {
	for i, name := range padAxisNames {
		if i != int(PadAxisUnknown) && equalFold(name, s) {
			return PadAxis(i), true
		}
	}
	return PadAxisUnknown, false
}

package input

// Handle maps ev to its normalized record, applying the event's effect on
// st. It never fails and performs no I/O; st must not be retained by callers
// beyond the call. The record carries the event's time and device.
func Handle(ev Event, st *State) Record {
	rec := ev.handle(st)
	h := ev.Header()
	rec.Time = h.Time
	rec.Device = h.Device
	return rec
}

func (e KeyDown) handle(*State) Record {
	return Record{Kind: KindKeyDown, Key: e.Key, Repeat: e.Repeat}
}

func (e KeyUp) handle(*State) Record {
	return Record{Kind: KindKeyUp, Key: e.Key}
}

func (e MouseDown) handle(st *State) Record {
	st.MouseDown = true
	return Record{Kind: KindMouseDown, Button: e.Button, X: e.X, Y: e.Y}
}

func (e MouseUp) handle(st *State) Record {
	st.MouseDown = false
	return Record{Kind: KindMouseUp, Button: e.Button, X: e.X, Y: e.Y}
}

// Position follows the pointer only while a button is held; the record is
// emitted either way.
func (e MouseMove) handle(st *State) Record {
	if st.MouseDown {
		st.CursorX = e.X
		st.CursorY = e.Y
	}
	return Record{Kind: KindMouseMove, X: e.X, Y: e.Y, DX: e.DX, DY: e.DY}
}

func (e MouseWheel) handle(*State) Record {
	return Record{Kind: KindMouseWheel, X: e.X, Y: e.Y}
}

func (e TextInput) handle(*State) Record {
	return Record{Kind: KindTextInput, Char: e.Char}
}

func (e GamepadButtonDown) handle(*State) Record {
	return Record{Kind: KindGamepadButtonDown, PadButton: e.Button, Pad: e.Pad}
}

func (e GamepadButtonUp) handle(*State) Record {
	return Record{Kind: KindGamepadButtonUp, PadButton: e.Button, Pad: e.Pad}
}

func (e GamepadAxis) handle(*State) Record {
	return Record{Kind: KindGamepadAxis, Axis: e.Axis, Value: e.Value, Pad: e.Pad}
}

func (e FocusChanged) handle(*State) Record {
	return Record{Kind: KindFocusChanged, Gained: e.Gained}
}

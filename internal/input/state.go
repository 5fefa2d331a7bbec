package input

// State is the application state mutated by dispatch.
type State struct {
	CursorX   float32
	CursorY   float32
	MouseDown bool
}

// DefaultState places the cursor at (100, 100) with no button held.
func DefaultState() State {
	return State{CursorX: 100, CursorY: 100}
}

// Store owns the single State value. Dispatch is the only way to change it.
// A Store is not safe for concurrent use: the loop feeding it must deliver
// one event at a time.
type Store struct {
	state State
}

// NewStore creates a store holding initial.
func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Get returns a copy of the current state.
func (s *Store) Get() State {
	return s.state
}

// Dispatch applies ev to the state and returns its record.
func (s *Store) Dispatch(ev Event) Record {
	return Handle(ev, &s.state)
}

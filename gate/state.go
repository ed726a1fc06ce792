package gate

// State is the three-valued permission state published to readers.
type State string

const (
	StateLoading State = "Loading"
	StateDenied  State = "Denied"
	StateGranted State = "Granted"
)

// States lists every State in declaration order.
func States() []State {
	return []State{StateLoading, StateDenied, StateGranted}
}

// FromBool maps a decoded flag to Granted or Denied.
func FromBool(granted bool) State {
	if granted {
		return StateGranted
	}
	return StateDenied
}

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	switch s {
	case StateLoading, StateDenied, StateGranted:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}

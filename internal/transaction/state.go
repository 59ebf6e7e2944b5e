package transaction

// State is a bitmask; CAS and Watching combine freely with the others.
type State uint8

const (
	StateInitialized State = 1 << iota
	StateInsideBlock
	StateDiscarded
	StateCAS
	StateWatching
)

var stateNames = []struct {
	flag State
	name string
}{
	{StateInitialized, "initialized"},
	{StateInsideBlock, "inside-block"},
	{StateDiscarded, "discarded"},
	{StateCAS, "cas"},
	{StateWatching, "watching"},
}

func (state State) Has(flags State) bool {
	return state&flags == flags
}

func (state *State) flag(flags State) {
	*state |= flags
}

func (state *State) unflag(flags State) {
	*state &^= flags
}

func (state *State) reset() {
	*state = 0
}

// watchAllowed reports whether WATCH may still be sent: before MULTI, or in
// CAS mode before MULTI was requested.
func (state State) watchAllowed() bool {
	return !state.Has(StateInitialized) || state.Has(StateCAS)
}

func (state State) String() string {
	if state == 0 {
		return "uninitialized"
	}

	names := ""
	for _, entry := range stateNames {
		if !state.Has(entry.flag) {
			continue
		}
		if names != "" {
			names += "|"
		}
		names += entry.name
	}

	return names
}

package queue

import "fmt"

// State is the playback state of one guild queue. Transitions are validated
// in SetState so invalid command orderings surface as errors instead of
// leaving the queue in a half-consistent flag combination.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StatePlaying
	StatePaused
	StateAdvancing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateAdvancing:
		return "advancing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var transitions = map[State][]State{
	StateIdle:       {StateConnecting},
	StateConnecting: {StatePlaying, StateIdle},
	StatePlaying:    {StatePaused, StateAdvancing, StateIdle},
	StatePaused:     {StatePlaying, StateAdvancing, StateIdle},
	StateAdvancing:  {StatePlaying, StateIdle},
}

func (s State) canEnter(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

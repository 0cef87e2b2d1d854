package checkout

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle       State = "idle"
	StateModalOpen  State = "modal_open"
	StateSubmitting State = "submitting"
)

func (s State) String() string {
	return string(s)
}

var transitions = map[State][]State{
	StateIdle:       {StateModalOpen},
	StateModalOpen:  {StateIdle, StateSubmitting},
	StateSubmitting: {StateIdle, StateModalOpen},
}

// CanTransition reports whether the flow may move from one state to another.
// Submitting ends in Idle on success and back in ModalOpen on failure.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

var ErrIllegalTransition = errors.New("illegal checkout transition")

// Flow is the checkout state kept per session.
type Flow struct {
	State State `json:"state"`
}

func (f *Flow) current() State {
	if f.State == "" {
		return StateIdle
	}
	return f.State
}

func (f *Flow) transition(to State) error {
	from := f.current()
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	f.State = to
	return nil
}

func (f *Flow) Current() State {
	return f.current()
}

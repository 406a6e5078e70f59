package isolate

import (
	"image"
	"sync"
)

// State is the lifecycle of one invocation. It only moves forward.
type State int32

const (
	NotStarted State = iota
	ShowingDialog
	Terminated
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case ShowingDialog:
		return "showing-dialog"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// invocation is shared by the worker, which writes it, and the watchdog,
// which reads it. mu guards everything below it.
type invocation[P, R any] struct {
	backdrop image.Image
	session  Handle
	param    P

	mu       sync.Mutex
	state    State
	outcome  Outcome
	payload  R
	captured bool
	failure  error
}

func newInvocation[P, R any](backdrop image.Image, session Handle, param P) *invocation[P, R] {
	return &invocation[P, R]{
		backdrop: backdrop,
		session:  session,
		param:    param,
	}
}

// State returns the current lifecycle state.
func (inv *invocation[P, R]) State() State {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.state
}

// advance moves to s if s is later than the current state.
func (inv *invocation[P, R]) advance(s State) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if s <= inv.state {
		return false
	}
	inv.state = s
	return true
}

func (inv *invocation[P, R]) capture(outcome Outcome, payload R) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.outcome = outcome
	inv.payload = payload
	inv.captured = true
}

// snapshot returns the captured result, if any. Safe on a nil invocation.
func (inv *invocation[P, R]) snapshot() (bool, Outcome, R) {
	var zero R
	if inv == nil {
		return false, OutcomeNone, zero
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if !inv.captured {
		return false, OutcomeNone, zero
	}
	return true, inv.outcome, inv.payload
}

// fail records the first failure seen on the worker side.
func (inv *invocation[P, R]) fail(err error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.failure == nil {
		inv.failure = err
	}
}

func (inv *invocation[P, R]) err() error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.failure
}

package push

import (
	"errors"
	"fmt"
	"sync"
)

// ErrIllegalTransition is returned when a state change is not allowed from the current state.
var ErrIllegalTransition = errors.New("illegal subscription state transition")

// State is the phase of the subscription lifecycle.
type State uint8

const (
	StateIdle State = iota
	StateCheckingSupport
	StateFetchingKey
	StateAwaitingWorker
	StateSubscribing
	StateSubscribed
	StateUnsubscribing
	StateUnsubscribed
	StateFailed
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCheckingSupport:
		return "checking_support"
	case StateFetchingKey:
		return "fetching_key"
	case StateAwaitingWorker:
		return "awaiting_worker"
	case StateSubscribing:
		return "subscribing"
	case StateSubscribed:
		return "subscribed"
	case StateUnsubscribing:
		return "unsubscribing"
	case StateUnsubscribed:
		return "unsubscribed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the current subscription status. Reason is set only when State is StateFailed.
type Status struct {
	State  State
	Reason Reason
}

func (s Status) String() string {
	if s.State == StateFailed {
		return fmt.Sprintf("%s(%s)", s.State, s.Reason)
	}
	return s.State.String()
}

// transitions lists the legal successors of each state.
var transitions = map[State][]State{
	StateIdle:            {StateCheckingSupport, StateUnsubscribing},
	StateCheckingSupport: {StateFetchingKey, StateFailed, StateSubscribed, StateUnsubscribed},
	StateFetchingKey:     {StateAwaitingWorker, StateFailed},
	StateAwaitingWorker:  {StateSubscribing, StateFailed},
	StateSubscribing:     {StateSubscribed, StateFailed},
	StateSubscribed:      {StateUnsubscribing, StateCheckingSupport},
	StateUnsubscribing:   {StateUnsubscribed, StateFailed},
	StateUnsubscribed:    {StateCheckingSupport, StateUnsubscribing},
	StateFailed:          {StateCheckingSupport, StateUnsubscribing},
}

// CanTransition reports whether to is a legal successor of from.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Machine holds the subscription status and enforces legal transitions.
// It performs no I/O.
type Machine struct {
	mu     sync.RWMutex
	status Status

	watchers  map[int]chan Status
	nextWatch int
}

// NewMachine creates a machine in StateIdle.
func NewMachine() *Machine {
	return &Machine{
		status:   Status{State: StateIdle},
		watchers: make(map[int]chan Status),
	}
}

// Status returns the current status.
func (m *Machine) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Transition moves to a non-failed state.
func (m *Machine) Transition(to State) error {
	if to == StateFailed {
		return fmt.Errorf("%w: use Fail to enter %s", ErrIllegalTransition, StateFailed)
	}
	return m.set(Status{State: to})
}

// Fail moves to StateFailed with the given reason.
func (m *Machine) Fail(reason Reason) error {
	return m.set(Status{State: StateFailed, Reason: reason})
}

func (m *Machine) set(next Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !CanTransition(m.status.State, next.State) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, m.status, next)
	}

	m.status = next
	for _, ch := range m.watchers {
		// Each watcher keeps only the latest status.
		select {
		case ch <- next:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- next
		}
	}
	return nil
}

// Watch registers a channel that receives the status after every change.
// Call Unwatch with the returned ID when done.
func (m *Machine) Watch() (int, <-chan Status) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextWatch
	m.nextWatch++
	ch := make(chan Status, 1)
	m.watchers[id] = ch
	return id, ch
}

// Unwatch removes and closes a watcher channel.
func (m *Machine) Unwatch(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.watchers[id]; ok {
		delete(m.watchers, id)
		close(ch)
	}
}

package node

import (
	"sync"
	"sync/atomic"
)

// State is the lifecycle state of a Node.
type State uint32

const (
	// Running nodes accept transactions and commit blocks.
	Running State = iota
	// Shutdown nodes reject transactions.
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// state tracks the lifecycle state and the goroutines a Node started, so
// Shutdown can wait for them.
type state struct {
	current atomic.Uint32
	wg      sync.WaitGroup
}

func (s *state) getState() State {
	return State(s.current.Load())
}

func (s *state) setState(st State) {
	s.current.Store(uint32(st))
}

func (s *state) goFunc(f func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f()
	}()
}

func (s *state) waitRoutines() {
	s.wg.Wait()
}

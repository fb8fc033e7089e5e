package node

import (
	"time"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer is a one-shot heartbeat. Reset arms it if it is not already
// armed; it then ticks once and disarms itself.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{}      //sends a signal to listening process
	resetCh      chan time.Duration //receives instruction to arm the timer
	shutdownCh   chan struct{}      //receives instruction to exit Run loop
}

// NewControlTimer ...
func NewControlTimer(timerFactory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       make(chan struct{}, 1),
		resetCh:      make(chan time.Duration, 1),
		shutdownCh:   make(chan struct{}),
	}
}

// NewHeartbeatTimer returns a ControlTimer backed by time.After.
func NewHeartbeatTimer() *ControlTimer {
	return NewControlTimer(func(d time.Duration) <-chan time.Time {
		if d == 0 {
			return nil
		}
		return time.After(d)
	})
}

// Run ...
func (c *ControlTimer) Run() {
	var timer <-chan time.Time

	for {
		select {
		case <-timer:
			timer = nil
			select {
			case c.tickCh <- struct{}{}:
			default:
			}
		case t := <-c.resetCh:
			if timer == nil {
				timer = c.timerFactory(t)
			}
		case <-c.shutdownCh:
			return
		}
	}
}

// Reset arms the timer. It never blocks, and is a no-op if the timer is
// already armed.
func (c *ControlTimer) Reset(d time.Duration) {
	select {
	case c.resetCh <- d:
	default:
	}
}

// Shutdown ...
func (c *ControlTimer) Shutdown() {
	close(c.shutdownCh)
}

package tui

// Signal adapts the controller's change notifications to a channel for
// Bubble Tea. Pending signals coalesce; the model always pulls the latest
// snapshot.
type Signal struct {
	ch chan struct{}
}

// NewSignal creates a new signal with room for one pending notification.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify records a change (non-blocking if one is already pending).
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default: // Already pending
	}
}

// C returns the receive side of the signal.
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

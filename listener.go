package wirekit

import (
	"github.com/opd-ai/wirekit/hook"
)

// Listener is one registered event subscription: it owns the event table
// installed on the emitter, the callback bundle the adapters dispatch
// into, and the hook linking it all into the emitter's list.
type Listener struct {
	hook   hook.Hook
	events any
	bundle any
	closed bool
}

func newListener(events, bundle any) *Listener {
	return &Listener{events: events, bundle: bundle}
}

// Close unregisters the subscription. The hook leaves the emitter's list
// first, then the emitter's removed finalizer runs, then the bundle is
// dropped, so no event can be in flight toward a freed callback. Close is
// idempotent and safe to call from inside the very callbacks it silences.
func (l *Listener) Close() {
	if l.closed {
		return
	}
	l.closed = true
	l.hook.Detach()
	l.bundle = nil
	l.events = nil
}

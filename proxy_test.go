package wirekit

import (
	"errors"
	"testing"
)

func TestProxyStateString(t *testing.T) {
	tests := []struct {
		state ProxyState
		want  string
	}{
		{ProxyUnbound, "unbound"},
		{ProxyBound, "bound"},
		{ProxyRemoved, "removed"},
		{ProxyDestroyed, "destroyed"},
		{ProxyState(42), "invalid"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ProxyState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestProxyStateMachine(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	id, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	p := obj.Proxy()
	if p.State() != ProxyUnbound {
		t.Errorf("state before dispatch = %v, want %v", p.State(), ProxyUnbound)
	}

	s.flush()
	if p.State() != ProxyBound {
		t.Errorf("state after Bound = %v, want %v", p.State(), ProxyBound)
	}
	if p.ID() != id {
		t.Errorf("ID() = %d, want %d", p.ID(), id)
	}

	s.srv.RemoveGlobal(id)
	s.flush()
	if p.State() != ProxyRemoved {
		t.Errorf("state after server removal = %v, want %v", p.State(), ProxyRemoved)
	}

	p.Destroy()
	if p.State() != ProxyDestroyed {
		t.Errorf("state after Destroy = %v, want %v", p.State(), ProxyDestroyed)
	}
}

func TestProxyDestroyOnce(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	_, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	s.flush()

	destroyEvents := 0
	l, err := obj.Proxy().AddListener().
		Destroy(func() { destroyEvents++ }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()

	obj.Proxy().Destroy()
	obj.Proxy().Destroy()
	obj.Proxy().Destroy()

	if destroyEvents != 1 {
		t.Errorf("Destroy events = %d, want 1", destroyEvents)
	}
	if s.srv.DestroyCount() != 1 {
		t.Errorf("engine destroys = %d, want 1", s.srv.DestroyCount())
	}
}

func TestProxyListenerEvents(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	id, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	var boundID uint32
	removed, destroyed := false, false
	l, err := obj.Proxy().AddListener().
		Bound(func(id uint32) { boundID = id }).
		Removed(func() { removed = true }).
		Destroy(func() { destroyed = true }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()

	s.flush()
	if boundID != id {
		t.Errorf("Bound id = %d, want %d", boundID, id)
	}

	s.srv.RemoveGlobal(id)
	s.flush()
	if !removed {
		t.Error("Removed never delivered")
	}

	obj.Proxy().Destroy()
	if !destroyed {
		t.Error("Destroy never delivered")
	}
}

func TestProxyPartialSlots(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	id, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	// only Bound is subscribed; Removed and Destroy must be skipped, not
	// dispatched into a missing handler
	bound := false
	l, err := obj.Proxy().AddListener().
		Bound(func(uint32) { bound = true }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()

	s.flush()
	s.srv.RemoveGlobal(id)
	s.flush()
	obj.Proxy().Destroy()

	if !bound {
		t.Error("Bound never delivered")
	}
}

func TestProxyListenerAfterDestroy(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	_, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	obj.Proxy().Destroy()

	_, err = obj.Proxy().AddListener().Bound(func(uint32) {}).Register()
	if !errors.Is(err, ErrProxyDestroyed) {
		t.Errorf("Register() after destroy error = %v, want ErrProxyDestroyed", err)
	}
}

func TestListenerCloseStopsDelivery(t *testing.T) {
	s := newSession(t)

	done := 0
	l, err := s.core.AddListener().
		Done(func(uint32, int32) { done++ }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := s.core.Sync(CoreID); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	s.flush()
	if done != 1 {
		t.Fatalf("done = %d, want 1", done)
	}

	l.Close()
	if _, err := s.core.Sync(CoreID); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	s.flush()
	if done != 1 {
		t.Errorf("done after Close = %d, want still 1", done)
	}

	l.Close()
}

func TestListenerCloseFromCallback(t *testing.T) {
	s := newSession(t)

	done := 0
	var l *Listener
	l, err := s.core.AddListener().
		Done(func(uint32, int32) {
			done++
			l.Close()
		}).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	registered := s.srv.ListenerCount()

	s.core.Sync(CoreID)
	s.core.Sync(CoreID)
	s.flush()

	if done != 1 {
		t.Errorf("done = %d, want 1 after self-close", done)
	}
	if got := s.srv.ListenerCount(); got != registered-1 {
		t.Errorf("ListenerCount() = %d, want %d after self-close", got, registered-1)
	}
}

func TestListenerIndependence(t *testing.T) {
	s := newSession(t)

	first, second := 0, 0
	l1, err := s.core.AddListener().
		Done(func(uint32, int32) { first++ }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	l2, err := s.core.AddListener().
		Done(func(uint32, int32) { second++ }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l2.Close()

	s.core.Sync(CoreID)
	s.flush()
	if first != 1 || second != 1 {
		t.Fatalf("counts = (%d, %d), want (1, 1)", first, second)
	}

	l1.Close()
	s.core.Sync(CoreID)
	s.flush()
	if first != 1 {
		t.Errorf("closed listener count = %d, want 1", first)
	}
	if second != 2 {
		t.Errorf("surviving listener count = %d, want 2", second)
	}
}

package hook

// Hook is a registration handle held by whoever subscribed. The zero value
// is inert; Append attaches it to a list and Remove detaches it. A Hook
// belongs to at most one list at a time.
type Hook struct {
	list *List
	slot int
	gen  uint32

	// Removed, when set, runs after the hook has been spliced out of its
	// list, both on Remove and on List.Clear. It is the place for
	// emitter-side teardown that must observe an already-unlinked hook.
	Removed func()
}

// Attached reports whether h is currently linked into a list.
func (h *Hook) Attached() bool {
	return h.list != nil
}

// Detach removes h from whatever list it is attached to, running its
// Removed finalizer. Holders that never saw the list use this to
// unsubscribe. Detaching an unattached hook is a no-op.
func (h *Hook) Detach() {
	if h.list != nil {
		h.list.Remove(h)
	}
}

type slot struct {
	prev, next int
	gen        uint32
	owner      *Hook
	payload    any
	used       bool
	cursor     bool
}

// List is an ordered collection of hooks owned by an event-emitting object.
// Slots live in a flat arena linked by indexes; a removed slot bumps its
// generation so a stale Hook can never splice out a later tenant. Append
// and Remove are O(1). A List is not safe for concurrent use: everything
// that touches it runs on the owner's dispatch context.
type List struct {
	slots []slot
	free  []int
	size  int
}

// NewList returns an empty list.
func NewList() *List {
	l := &List{slots: make([]slot, 1)}
	l.slots[0] = slot{prev: 0, next: 0} // sentinel anchors the ring
	return l
}

// Len returns the number of attached hooks.
func (l *List) Len() int {
	return l.size
}

// Append attaches h at the end of the list with the given payload.
// It panics if h is nil or already attached; registering one handle twice
// is a caller bug, not a state to absorb.
func (l *List) Append(h *Hook, payload any) {
	if h == nil {
		panic("hook: Append with nil hook")
	}
	if h.list != nil {
		panic("hook: hook is already attached")
	}
	idx := l.alloc()
	s := &l.slots[idx]
	s.owner = h
	s.payload = payload
	s.used = true
	s.cursor = false
	l.linkBeforeSentinel(idx)
	l.size++
	h.list, h.slot, h.gen = l, idx, s.gen
}

// Remove detaches h from the list, then runs its Removed finalizer. The
// order is fixed: unlink first, finalizer second, so the finalizer always
// observes a hook that no future dispatch can reach. Remove is idempotent;
// removing a hook that was never attached here, or whose slot has since
// been reused, is a no-op.
func (l *List) Remove(h *Hook) {
	if h == nil || h.list != l {
		return
	}
	s := &l.slots[h.slot]
	if !s.used || s.cursor || s.gen != h.gen {
		h.list = nil
		return
	}
	l.unlink(h.slot)
}

// Dispatch invokes fn with every attached payload in registration order.
// Hooks may be removed from inside fn, including the one currently being
// dispatched, and appended; removals take effect immediately and appended
// hooks are visited in the same pass. The walk parks a cursor slot after
// the current hook before invoking fn, so surrounding removals can never
// strand it. Nested dispatch is allowed.
func (l *List) Dispatch(fn func(payload any)) {
	var cur Hook
	idx := l.slots[0].next
	for idx != 0 {
		if l.slots[idx].cursor {
			idx = l.slots[idx].next
			continue
		}
		payload := l.slots[idx].payload
		l.parkCursor(&cur, idx)
		fn(payload)
		if cur.list != l {
			// fn cleared the whole list, cursor included; restart from
			// the sentinel to pick up anything appended since.
			idx = l.slots[0].next
			continue
		}
		idx = l.slots[cur.slot].next
		l.unlink(cur.slot)
	}
}

// Clear detaches every hook in registration order, running each finalizer
// as its hook comes off the list.
func (l *List) Clear() {
	for idx := l.slots[0].next; idx != 0; idx = l.slots[0].next {
		l.unlink(idx)
	}
}

func (l *List) alloc() int {
	if n := len(l.free); n > 0 {
		idx := l.free[n-1]
		l.free = l.free[:n-1]
		return idx
	}
	l.slots = append(l.slots, slot{gen: 1})
	return len(l.slots) - 1
}

func (l *List) linkBeforeSentinel(idx int) {
	tail := l.slots[0].prev
	l.slots[idx].prev = tail
	l.slots[idx].next = 0
	l.slots[tail].next = idx
	l.slots[0].prev = idx
}

func (l *List) linkAfter(idx, after int) {
	next := l.slots[after].next
	l.slots[idx].prev = after
	l.slots[idx].next = next
	l.slots[after].next = idx
	l.slots[next].prev = idx
}

// unlink splices the slot out, detaches its owner handle, retires the slot,
// and finally runs the owner's finalizer. Cursor slots have no finalizer
// semantics and are simply retired.
func (l *List) unlink(idx int) {
	s := &l.slots[idx]
	owner, wasCursor := s.owner, s.cursor
	l.slots[s.prev].next = s.next
	l.slots[s.next].prev = s.prev
	s.used = false
	s.cursor = false
	s.owner = nil
	s.payload = nil
	s.gen++
	l.free = append(l.free, idx)
	if !wasCursor {
		l.size--
	}
	if owner != nil {
		owner.list = nil
		if !wasCursor && owner.Removed != nil {
			owner.Removed()
		}
	}
}

func (l *List) parkCursor(h *Hook, after int) {
	idx := l.alloc()
	s := &l.slots[idx]
	s.owner = h
	s.used = true
	s.cursor = true
	l.linkAfter(idx, after)
	h.list, h.slot, h.gen = l, idx, s.gen
}

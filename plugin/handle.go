package plugin

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/result"
)

// state is the shared core of a constructed object: the header, the state
// block, and the strong reference count. Handles and views are thin
// wrappers that each own one reference. Teardown runs exactly once, on
// whichever release drops the count to zero, or in the finalizer backstop
// when every wrapper leaked without closing.
type state struct {
	mu      sync.Mutex
	mod     *Module
	obj     *abi.Object
	block   []byte
	refs    int
	cleared bool
}

func newHandle(mod *Module, obj *abi.Object, block []byte) *Handle {
	st := &state{mod: mod, obj: obj, block: block, refs: 1}
	runtime.SetFinalizer(st, finalizeState)
	return &Handle{st: st}
}

// ref takes one strong reference.
func (st *state) ref() {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.cleared {
		panic("plugin: reference taken on a torn-down object")
	}
	st.refs++
}

// unref drops one strong reference and tears the object down when the last
// one goes: the object's Clear runs, the state block is released, and the
// module loses the reference this object held. The Clear error, if any, is
// returned to the caller that triggered teardown.
func (st *state) unref() error {
	st.mu.Lock()
	st.refs--
	if st.refs > 0 || st.cleared {
		st.mu.Unlock()
		return nil
	}
	st.cleared = true
	st.mu.Unlock()
	return st.teardown()
}

func (st *state) teardown() error {
	res := result.FromRaw(st.obj.Clear(st.obj))
	releaseBlock(st.block)
	st.block = nil
	st.mod.unref()
	if res.IsError() {
		return res.Errno()
	}
	return nil
}

// finalizeState is the backstop for wrappers that were never closed: it
// performs the same teardown but swallows the error after logging it,
// since no caller remains to receive it.
func finalizeState(st *state) {
	st.mu.Lock()
	if st.cleared {
		st.mu.Unlock()
		return
	}
	st.cleared = true
	st.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "finalizeState",
		"module":   st.mod.path,
	}).Warn("Object handle leaked without Close, tearing down in finalizer")
	if err := st.teardown(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "finalizeState",
			"module":   st.mod.path,
			"error":    err.Error(),
		}).Warn("Teardown failed in finalizer, error dropped")
	}
}

// Handle owns a constructed object. Closing the handle releases its
// reference; the object is torn down when the last handle or view
// releases, and only an explicit Close that triggers teardown observes the
// teardown error. A handle that is simply dropped is torn down by a
// finalizer that logs and swallows the error instead.
type Handle struct {
	mu       sync.Mutex
	st       *state
	released bool
}

// Close releases the handle's reference. If that was the last reference to
// the object, the object is torn down and Close returns the teardown
// error; otherwise Close returns nil. Close is idempotent.
func (h *Handle) Close() error {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil
	}
	h.released = true
	h.mu.Unlock()
	return h.st.unref()
}

// Interface looks up the interface named name on the object and validates
// what comes back against the object's self-describing header: the header
// must spell exactly the requested type name and carry at least the
// requested version. The returned view holds its own strong reference, so
// the object and its module outlive it.
func (h *Handle) Interface(name string, version uint32) (*View, error) {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return nil, newModuleError("interface", h.st.mod.path, ErrClosed)
	}
	h.mu.Unlock()

	var out any
	res := result.FromRaw(h.st.obj.GetInterface(h.st.obj, abi.Str(name), &out))
	if res.IsError() {
		return nil, newModuleError("interface", h.st.mod.path,
			fmt.Errorf("%w: %q: %v", ErrNotSupported, name, res.Errno()))
	}
	iface, ok := out.(*abi.Interface)
	if !ok || iface == nil {
		panic(fmt.Sprintf("plugin: object stored %T for interface %q, want *abi.Interface", out, name))
	}
	if !iface.Is(name) {
		return nil, newModuleError("interface", h.st.mod.path,
			fmt.Errorf("%w: object calls it %q, caller asked for %q", ErrWrongInterface, iface.TypeName(), name))
	}
	if iface.Version < version {
		return nil, newModuleError("interface", h.st.mod.path,
			fmt.Errorf("%w: object has version %d, caller needs %d", ErrVersionTooOld, iface.Version, version))
	}

	h.st.ref()
	return &View{st: h.st, iface: iface}, nil
}

// View is a typed window on one interface of a constructed object. It
// keeps the object alive until closed.
type View struct {
	mu       sync.Mutex
	st       *state
	iface    *abi.Interface
	released bool
}

// Iface returns the interface header the view was validated against.
func (v *View) Iface() *abi.Interface {
	return v.iface
}

// Close releases the view's reference, with the same last-reference
// teardown semantics as Handle.Close. Close is idempotent.
func (v *View) Close() error {
	v.mu.Lock()
	if v.released {
		v.mu.Unlock()
		return nil
	}
	v.released = true
	v.mu.Unlock()
	return v.st.unref()
}

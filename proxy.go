package wirekit

import (
	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/hook"
)

// ProxyState tracks where a proxy is in its lifetime.
type ProxyState int32

const (
	// ProxyUnbound means the engine has not yet confirmed the binding.
	ProxyUnbound ProxyState = iota
	// ProxyBound means the object is live under its server-assigned id.
	ProxyBound
	// ProxyRemoved means the server withdrew the object; the client still
	// has to Destroy its side.
	ProxyRemoved
	// ProxyDestroyed means the client released the object.
	ProxyDestroyed
)

func (s ProxyState) String() string {
	switch s {
	case ProxyUnbound:
		return "unbound"
	case ProxyBound:
		return "bound"
	case ProxyRemoved:
		return "removed"
	case ProxyDestroyed:
		return "destroyed"
	}
	return "invalid"
}

// Proxy is the client's handle on one remote object. It moves Unbound to
// Bound when the engine confirms the id, then to Removed when the server
// withdraws the object or Destroyed when the client lets go. Like the
// rest of the runtime it is loop-confined, not goroutine safe.
type Proxy struct {
	raw       *abi.Proxy
	id        uint32
	state     ProxyState
	destroyed bool
	tracker   hook.Hook
}

// stateEvents is the internal subscription every wrapped proxy installs
// first, so state reflects an event before any user listener sees it.
var stateEvents = &abi.ProxyEvents{
	Version: abi.VersionProxyEvents,
	Bound:   proxyTrackBound,
	Removed: proxyTrackRemoved,
	Destroy: proxyTrackDestroy,
}

func wrapProxy(raw *abi.Proxy) *Proxy {
	p := &Proxy{raw: raw, id: raw.ID}
	raw.Methods.AddListener(raw.Data, &p.tracker, stateEvents, p)
	return p
}

func proxyTrackBound(ctx any, id uint32) {
	p := ctx.(*Proxy)
	p.id = id
	if p.state == ProxyUnbound {
		p.state = ProxyBound
	}
}

func proxyTrackRemoved(ctx any) {
	p := ctx.(*Proxy)
	if p.state != ProxyDestroyed {
		p.state = ProxyRemoved
	}
}

func proxyTrackDestroy(ctx any) {
	ctx.(*Proxy).state = ProxyDestroyed
}

// ID returns the server-assigned object id, or the provisional id until
// the Bound event lands.
func (p *Proxy) ID() uint32 {
	return p.id
}

// Type returns the object's interface type name.
func (p *Proxy) Type() ObjectType {
	return ObjectType(p.raw.Iface.TypeName())
}

// Version returns the interface version the object implements.
func (p *Proxy) Version() uint32 {
	return p.raw.Iface.Version
}

// State returns the current lifetime state.
func (p *Proxy) State() ProxyState {
	return p.state
}

// Destroy releases the client's hold on the object. The engine-side
// destroy and the Destroy listener event happen exactly once no matter how
// often Destroy is called; later calls are no-ops. Valid in every state,
// including after Removed, where it is how the client finishes letting go.
func (p *Proxy) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.raw.Methods.Destroy(p.raw.Data)
	p.state = ProxyDestroyed
}

// proxyHandlers is the callback bundle of one proxy listener registration.
type proxyHandlers struct {
	bound   func(id uint32)
	removed func()
	destroy func()
}

func proxyBoundAdapter(ctx any, id uint32) {
	h := ctx.(*proxyHandlers)
	if h.bound == nil {
		panic("wirekit: proxy bound event with no handler registered")
	}
	h.bound(id)
}

func proxyRemovedAdapter(ctx any) {
	h := ctx.(*proxyHandlers)
	if h.removed == nil {
		panic("wirekit: proxy removed event with no handler registered")
	}
	h.removed()
}

func proxyDestroyAdapter(ctx any) {
	h := ctx.(*proxyHandlers)
	if h.destroy == nil {
		panic("wirekit: proxy destroy event with no handler registered")
	}
	h.destroy()
}

// ProxyListenerBuilder collects proxy lifetime callbacks before Register
// installs them. Only the slots given a callback end up in the installed
// event table; the rest stay nil and are skipped at dispatch.
type ProxyListenerBuilder struct {
	proxy *Proxy
	h     proxyHandlers
}

// AddListener starts a lifetime subscription on the proxy.
func (p *Proxy) AddListener() *ProxyListenerBuilder {
	return &ProxyListenerBuilder{proxy: p}
}

// Bound sets the callback for the engine confirming the binding.
func (b *ProxyListenerBuilder) Bound(fn func(id uint32)) *ProxyListenerBuilder {
	b.h.bound = fn
	return b
}

// Removed sets the callback for the server withdrawing the object.
func (b *ProxyListenerBuilder) Removed(fn func()) *ProxyListenerBuilder {
	b.h.removed = fn
	return b
}

// Destroy sets the callback for client-side destruction.
func (b *ProxyListenerBuilder) Destroy(fn func()) *ProxyListenerBuilder {
	b.h.destroy = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *ProxyListenerBuilder) Register() (*Listener, error) {
	if b.proxy.destroyed {
		return nil, newProxyError("add_listener", b.proxy.id, ErrProxyDestroyed)
	}
	bundle := new(proxyHandlers)
	*bundle = b.h
	events := &abi.ProxyEvents{Version: abi.VersionProxyEvents}
	if bundle.bound != nil {
		events.Bound = proxyBoundAdapter
	}
	if bundle.removed != nil {
		events.Removed = proxyRemovedAdapter
	}
	if bundle.destroy != nil {
		events.Destroy = proxyDestroyAdapter
	}
	l := newListener(events, bundle)
	b.proxy.raw.Methods.AddListener(b.proxy.raw.Data, &l.hook, events, bundle)
	return l, nil
}

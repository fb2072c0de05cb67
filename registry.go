package wirekit

import (
	"fmt"
	"syscall"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
)

// Registry is the client's view of the engine's global object directory.
// It announces every live global to new listeners and their departures to
// all of them, and turns announcements into live objects through Bind.
type Registry struct {
	proxy *Proxy
	m     *abi.RegistryMethods
}

func newRegistry(raw *abi.Proxy) *Registry {
	return &Registry{
		proxy: wrapProxy(raw),
		m:     abi.Methods[abi.RegistryMethods](&raw.Iface),
	}
}

func (r *Registry) data() any {
	return r.proxy.raw.Iface.Cb.Data
}

// ID returns the registry's object id.
func (r *Registry) ID() uint32 {
	return r.proxy.ID()
}

// Proxy returns the underlying proxy for lifetime listeners and Destroy.
func (r *Registry) Proxy() *Proxy {
	return r.proxy
}

// GlobalObject is the decoded announcement of one global. The Props view
// borrows the engine's table and is only valid during the callback that
// delivered it; Copy it to retain.
type GlobalObject struct {
	ID          uint32
	Permissions uint32
	Type        ObjectType
	Version     uint32
	Props       dict.Foreign
}

func decodeGlobal(raw *abi.GlobalInfo) *GlobalObject {
	return &GlobalObject{
		ID:          raw.ID,
		Permissions: raw.Permissions,
		Type:        ObjectType(cstr(raw.Type)),
		Version:     raw.Version,
		Props:       dict.View(raw.Props),
	}
}

// Bind turns an announced global into a live typed object. The advertised
// type picks the registered client kind; an unregistered type fails with
// ErrUnknownType, and a nil engine proxy maps to ENOMEM.
func (r *Registry) Bind(g *GlobalObject) (ProxyObject, error) {
	k, ok := kinds[g.Type]
	if !ok {
		return nil, newProxyError("bind", g.ID, fmt.Errorf("%w: %s", ErrUnknownType, g.Type))
	}
	raw := r.m.Bind(r.data(), g.ID, abi.Str(string(g.Type)), k.version)
	if raw == nil {
		return nil, newProxyError("bind", g.ID, syscall.ENOMEM)
	}
	return k.ctor(wrapProxy(raw)), nil
}

// BindAs binds a global and narrows it to the requested wrapper type. On
// a kind mismatch the freshly bound proxy is destroyed before the error
// returns, so a failed typed bind never leaks a live object.
func BindAs[T ProxyObject](r *Registry, g *GlobalObject) (T, error) {
	var zero T
	obj, err := r.Bind(g)
	if err != nil {
		return zero, err
	}
	t, ok := obj.(T)
	if !ok {
		obj.Proxy().Destroy()
		return zero, newProxyError("bind", g.ID,
			fmt.Errorf("%w: global is %s, caller wants %T", ErrWrongProxyType, obj.Type(), zero))
	}
	return t, nil
}

// registryHandlers is the callback bundle of one registry listener
// registration.
type registryHandlers struct {
	global       func(*GlobalObject)
	globalRemove func(id uint32)
}

func registryGlobalAdapter(ctx any, info *abi.GlobalInfo) {
	h := ctx.(*registryHandlers)
	if h.global == nil {
		panic("wirekit: registry global event with no handler registered")
	}
	h.global(decodeGlobal(info))
}

func registryGlobalRemoveAdapter(ctx any, id uint32) {
	h := ctx.(*registryHandlers)
	if h.globalRemove == nil {
		panic("wirekit: registry global-remove event with no handler registered")
	}
	h.globalRemove(id)
}

// RegistryListenerBuilder collects registry callbacks before Register
// installs them. Only supplied slots end up in the event table.
type RegistryListenerBuilder struct {
	registry *Registry
	h        registryHandlers
}

// AddListener starts a subscription on the registry. Registering replays
// every already-announced global to the Global callback.
func (r *Registry) AddListener() *RegistryListenerBuilder {
	return &RegistryListenerBuilder{registry: r}
}

// Global sets the callback for global announcements.
func (b *RegistryListenerBuilder) Global(fn func(*GlobalObject)) *RegistryListenerBuilder {
	b.h.global = fn
	return b
}

// GlobalRemove sets the callback for global departures.
func (b *RegistryListenerBuilder) GlobalRemove(fn func(id uint32)) *RegistryListenerBuilder {
	b.h.globalRemove = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *RegistryListenerBuilder) Register() (*Listener, error) {
	bundle := new(registryHandlers)
	*bundle = b.h
	events := &abi.RegistryEvents{Version: abi.VersionRegistryEvents}
	if bundle.global != nil {
		events.Global = registryGlobalAdapter
	}
	if bundle.globalRemove != nil {
		events.GlobalRemove = registryGlobalRemoveAdapter
	}
	l := newListener(events, bundle)
	b.registry.m.AddListener(b.registry.data(), &l.hook, events, bundle)
	return l, nil
}

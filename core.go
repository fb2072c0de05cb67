package wirekit

import (
	"syscall"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/result"
)

// CoreID is the well-known id of the core object on every connection.
const CoreID uint32 = 0

// Core is the client's handle on a connected session. Every other object
// hangs off it: the registry through GetRegistry, created objects through
// CreateObject, and round-trip ordering through Sync.
type Core struct {
	proxy        *Proxy
	m            *abi.CoreMethods
	lastSeq      int32
	disconnected bool
}

func newCore(raw *abi.Proxy) *Core {
	return &Core{
		proxy: wrapProxy(raw),
		m:     abi.Methods[abi.CoreMethods](&raw.Iface),
	}
}

func (c *Core) data() any {
	return c.proxy.raw.Iface.Cb.Data
}

// ID returns CoreID.
func (c *Core) ID() uint32 {
	return c.proxy.ID()
}

// Proxy returns the underlying proxy for lifetime listeners.
func (c *Core) Proxy() *Proxy {
	return c.proxy
}

// Sync asks the engine for a done event on the given object id. The
// returned code is always pending; the matching Done listener call carries
// the same sequence number, which is how callers know earlier requests
// have been processed.
func (c *Core) Sync(id uint32) (result.Code, error) {
	if c.disconnected {
		return 0, newProxyError("sync", CoreID, ErrDisconnected)
	}
	code := result.FromRaw(c.m.Sync(c.data(), id, c.lastSeq))
	seq, err := code.Async()
	if err != nil {
		return code, newProxyError("sync", id, err)
	}
	c.lastSeq = seq
	return code, nil
}

// GetRegistry binds the registry singleton.
func (c *Core) GetRegistry(version uint32) (*Registry, error) {
	if c.disconnected {
		return nil, newProxyError("get_registry", CoreID, ErrDisconnected)
	}
	raw := c.m.GetRegistry(c.data(), version)
	if raw == nil {
		return nil, newProxyError("get_registry", CoreID, syscall.ENOMEM)
	}
	return newRegistry(raw), nil
}

// CreateObject asks a server-side factory for a new object and returns
// the proxy holding it. A nil engine proxy means the engine could not
// allocate or find the factory and maps to ENOMEM; details arrive on the
// core Error listener.
func (c *Core) CreateObject(factory string, objType ObjectType, version uint32, props *dict.Props) (*Proxy, error) {
	if c.disconnected {
		return nil, newProxyError("create_object", CoreID, ErrDisconnected)
	}
	raw := c.m.CreateObject(c.data(), abi.Str(factory), abi.Str(string(objType)), version, props.Dict())
	if raw == nil {
		return nil, newProxyError("create_object", CoreID, syscall.ENOMEM)
	}
	return wrapProxy(raw), nil
}

// Disconnect ends the session. Further core calls fail with
// ErrDisconnected, as does a second Disconnect.
func (c *Core) Disconnect() error {
	if c.disconnected {
		return newProxyError("disconnect", CoreID, ErrDisconnected)
	}
	c.disconnected = true
	if code := result.FromRaw(c.m.Disconnect(c.data())); code.IsError() {
		return newProxyError("disconnect", CoreID, code.Errno())
	}
	return nil
}

// CoreInfo is the decoded session description delivered to Info
// listeners. Props borrows the engine's table and is only valid during
// the callback; Copy it to retain.
type CoreInfo struct {
	ID         uint32
	Cookie     uint32
	UserName   string
	HostName   string
	Version    string
	Name       string
	ChangeMask uint64
	Props      dict.Foreign
}

func decodeCoreInfo(raw *abi.CoreInfo) *CoreInfo {
	return &CoreInfo{
		ID:         raw.ID,
		Cookie:     raw.Cookie,
		UserName:   cstr(raw.UserName),
		HostName:   cstr(raw.HostName),
		Version:    cstr(raw.Version),
		Name:       cstr(raw.Name),
		ChangeMask: raw.ChangeMask,
		Props:      dict.View(raw.Props),
	}
}

// coreHandlers is the callback bundle of one core listener registration.
type coreHandlers struct {
	info func(*CoreInfo)
	done func(id uint32, seq int32)
	err  func(id uint32, seq int32, res int32, msg string)
}

func coreInfoAdapter(ctx any, info *abi.CoreInfo) {
	h := ctx.(*coreHandlers)
	if h.info == nil {
		panic("wirekit: core info event with no handler registered")
	}
	h.info(decodeCoreInfo(info))
}

func coreDoneAdapter(ctx any, id uint32, seq int32) {
	h := ctx.(*coreHandlers)
	if h.done == nil {
		panic("wirekit: core done event with no handler registered")
	}
	h.done(id, seq)
}

func coreErrorAdapter(ctx any, id uint32, seq int32, res int32, message []byte) {
	h := ctx.(*coreHandlers)
	if h.err == nil {
		panic("wirekit: core error event with no handler registered")
	}
	h.err(id, seq, res, cstr(message))
}

// CoreListenerBuilder collects core callbacks before Register installs
// them. Only supplied slots end up in the event table.
type CoreListenerBuilder struct {
	core *Core
	h    coreHandlers
}

// AddListener starts a subscription on the core object.
func (c *Core) AddListener() *CoreListenerBuilder {
	return &CoreListenerBuilder{core: c}
}

// Info sets the callback for session description changes.
func (b *CoreListenerBuilder) Info(fn func(*CoreInfo)) *CoreListenerBuilder {
	b.h.info = fn
	return b
}

// Done sets the callback answering Sync round-trips.
func (b *CoreListenerBuilder) Done(fn func(id uint32, seq int32)) *CoreListenerBuilder {
	b.h.done = fn
	return b
}

// Error sets the callback for failures reported against an object id.
func (b *CoreListenerBuilder) Error(fn func(id uint32, seq int32, res int32, msg string)) *CoreListenerBuilder {
	b.h.err = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *CoreListenerBuilder) Register() (*Listener, error) {
	if b.core.disconnected {
		return nil, newProxyError("add_listener", CoreID, ErrDisconnected)
	}
	bundle := new(coreHandlers)
	*bundle = b.h
	events := &abi.CoreEvents{Version: abi.VersionCoreEvents}
	if bundle.info != nil {
		events.Info = coreInfoAdapter
	}
	if bundle.done != nil {
		events.Done = coreDoneAdapter
	}
	if bundle.err != nil {
		events.Error = coreErrorAdapter
	}
	l := newListener(events, bundle)
	b.core.m.AddListener(b.core.data(), &l.hook, events, bundle)
	return l, nil
}

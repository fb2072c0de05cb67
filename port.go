package wirekit

import (
	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/result"
)

// Direction re-exports the port direction values.
type Direction = abi.Direction

const (
	DirectionInput  = abi.DirectionInput
	DirectionOutput = abi.DirectionOutput
)

// Port info change mask bits.
const (
	PortChangeProps  = abi.PortChangeProps
	PortChangeParams = abi.PortChangeParams
)

// Port is the typed wrapper for bound TypePort globals.
type Port struct {
	proxy *Proxy
	m     *abi.PortMethods
}

func newPortObject(p *Proxy) ProxyObject {
	return &Port{proxy: p, m: abi.Methods[abi.PortMethods](&p.raw.Iface)}
}

func (p *Port) ID() uint32       { return p.proxy.ID() }
func (p *Port) Type() ObjectType { return TypePort }
func (p *Port) Proxy() *Proxy    { return p.proxy }

func (p *Port) data() any {
	return p.proxy.raw.Iface.Cb.Data
}

// EnumParams asks the port to deliver Param events for the parameter id,
// starting at index start and delivering at most num.
func (p *Port) EnumParams(seq int32, id uint32, start, num uint32) error {
	code := result.FromRaw(p.m.EnumParams(p.data(), seq, id, start, num))
	if code.IsError() {
		return newProxyError("enum_params", p.ID(), code.Errno())
	}
	return nil
}

// PortInfo is the decoded port description delivered to Info listeners.
// Props borrows the engine's table and is only valid during the callback.
type PortInfo struct {
	ID         uint32
	Direction  Direction
	ChangeMask uint64
	Props      dict.Foreign
}

func decodePortInfo(raw *abi.PortInfo) *PortInfo {
	return &PortInfo{
		ID:         raw.ID,
		Direction:  raw.Direction,
		ChangeMask: raw.ChangeMask,
		Props:      dict.View(raw.Props),
	}
}

// portHandlers is the callback bundle of one port listener registration.
type portHandlers struct {
	info  func(*PortInfo)
	param func(seq int32, id, index, next uint32, param dict.Foreign)
}

func portInfoAdapter(ctx any, info *abi.PortInfo) {
	h := ctx.(*portHandlers)
	if h.info == nil {
		panic("wirekit: port info event with no handler registered")
	}
	h.info(decodePortInfo(info))
}

func portParamAdapter(ctx any, seq int32, id, index, next uint32, param *abi.RawDict) {
	h := ctx.(*portHandlers)
	if h.param == nil {
		panic("wirekit: port param event with no handler registered")
	}
	h.param(seq, id, index, next, dict.View(param))
}

// PortListenerBuilder collects port callbacks before Register installs
// them. Only supplied slots end up in the event table.
type PortListenerBuilder struct {
	port *Port
	h    portHandlers
}

// AddListener starts a subscription on the port.
func (p *Port) AddListener() *PortListenerBuilder {
	return &PortListenerBuilder{port: p}
}

// Info sets the callback for port description changes.
func (b *PortListenerBuilder) Info(fn func(*PortInfo)) *PortListenerBuilder {
	b.h.info = fn
	return b
}

// Param sets the callback for parameter enumeration results.
func (b *PortListenerBuilder) Param(fn func(seq int32, id, index, next uint32, param dict.Foreign)) *PortListenerBuilder {
	b.h.param = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *PortListenerBuilder) Register() (*Listener, error) {
	bundle := new(portHandlers)
	*bundle = b.h
	events := &abi.PortEvents{Version: abi.VersionPortEvents}
	if bundle.info != nil {
		events.Info = portInfoAdapter
	}
	if bundle.param != nil {
		events.Param = portParamAdapter
	}
	l := newListener(events, bundle)
	b.port.m.AddListener(b.port.data(), &l.hook, events, bundle)
	return l, nil
}

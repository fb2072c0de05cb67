package wirekit

import (
	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
)

// LinkState re-exports the raw link states.
type LinkState = abi.LinkState

const (
	LinkStateError       = abi.LinkStateError
	LinkStateUnlinked    = abi.LinkStateUnlinked
	LinkStateInit        = abi.LinkStateInit
	LinkStateNegotiating = abi.LinkStateNegotiating
	LinkStateAllocating  = abi.LinkStateAllocating
	LinkStatePaused      = abi.LinkStatePaused
	LinkStateActive      = abi.LinkStateActive
)

// Link info change mask bits.
const (
	LinkChangeState = abi.LinkChangeState
	LinkChangeProps = abi.LinkChangeProps
)

// Link is the typed wrapper for bound TypeLink globals.
type Link struct {
	proxy *Proxy
	m     *abi.LinkMethods
}

func newLinkObject(p *Proxy) ProxyObject {
	return &Link{proxy: p, m: abi.Methods[abi.LinkMethods](&p.raw.Iface)}
}

func (l *Link) ID() uint32       { return l.proxy.ID() }
func (l *Link) Type() ObjectType { return TypeLink }
func (l *Link) Proxy() *Proxy    { return l.proxy }

func (l *Link) data() any {
	return l.proxy.raw.Iface.Cb.Data
}

// LinkInfo is the decoded link description delivered to Info listeners.
// Error is meaningful only in LinkStateError. Props borrows the engine's
// table and is only valid during the callback.
type LinkInfo struct {
	ID           uint32
	OutputNodeID uint32
	OutputPortID uint32
	InputNodeID  uint32
	InputPortID  uint32
	ChangeMask   uint64
	State        LinkState
	Error        string
	Props        dict.Foreign
}

func decodeLinkInfo(raw *abi.LinkInfo) *LinkInfo {
	return &LinkInfo{
		ID:           raw.ID,
		OutputNodeID: raw.OutputNodeID,
		OutputPortID: raw.OutputPortID,
		InputNodeID:  raw.InputNodeID,
		InputPortID:  raw.InputPortID,
		ChangeMask:   raw.ChangeMask,
		State:        raw.State,
		Error:        cstr(raw.Error),
		Props:        dict.View(raw.Props),
	}
}

// linkHandlers is the callback bundle of one link listener registration.
type linkHandlers struct {
	info func(*LinkInfo)
}

func linkInfoAdapter(ctx any, info *abi.LinkInfo) {
	h := ctx.(*linkHandlers)
	if h.info == nil {
		panic("wirekit: link info event with no handler registered")
	}
	h.info(decodeLinkInfo(info))
}

// LinkListenerBuilder collects link callbacks before Register installs
// them.
type LinkListenerBuilder struct {
	link *Link
	h    linkHandlers
}

// AddListener starts a subscription on the link.
func (l *Link) AddListener() *LinkListenerBuilder {
	return &LinkListenerBuilder{link: l}
}

// Info sets the callback for link description changes.
func (b *LinkListenerBuilder) Info(fn func(*LinkInfo)) *LinkListenerBuilder {
	b.h.info = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *LinkListenerBuilder) Register() (*Listener, error) {
	bundle := new(linkHandlers)
	*bundle = b.h
	events := &abi.LinkEvents{Version: abi.VersionLinkEvents}
	if bundle.info != nil {
		events.Info = linkInfoAdapter
	}
	l := newListener(events, bundle)
	b.link.m.AddListener(b.link.data(), &l.hook, events, bundle)
	return l, nil
}

package wirekit

import (
	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/result"
)

// NodeState re-exports the raw node processing states.
type NodeState = abi.NodeState

const (
	NodeStateError     = abi.NodeStateError
	NodeStateCreating  = abi.NodeStateCreating
	NodeStateSuspended = abi.NodeStateSuspended
	NodeStateIdle      = abi.NodeStateIdle
	NodeStateRunning   = abi.NodeStateRunning
)

// Node info change mask bits.
const (
	NodeChangeInputPorts  = abi.NodeChangeInputPorts
	NodeChangeOutputPorts = abi.NodeChangeOutputPorts
	NodeChangeState       = abi.NodeChangeState
	NodeChangeProps       = abi.NodeChangeProps
	NodeChangeParams      = abi.NodeChangeParams
)

// Node is the typed wrapper for bound TypeNode globals.
type Node struct {
	proxy *Proxy
	m     *abi.NodeMethods
}

func newNodeObject(p *Proxy) ProxyObject {
	return &Node{proxy: p, m: abi.Methods[abi.NodeMethods](&p.raw.Iface)}
}

func (n *Node) ID() uint32       { return n.proxy.ID() }
func (n *Node) Type() ObjectType { return TypeNode }
func (n *Node) Proxy() *Proxy    { return n.proxy }

func (n *Node) data() any {
	return n.proxy.raw.Iface.Cb.Data
}

// EnumParams asks the node to deliver Param events for the parameter id,
// starting at index start and delivering at most num.
func (n *Node) EnumParams(seq int32, id uint32, start, num uint32) error {
	code := result.FromRaw(n.m.EnumParams(n.data(), seq, id, start, num))
	if code.IsError() {
		return newProxyError("enum_params", n.ID(), code.Errno())
	}
	return nil
}

// NodeInfo is the decoded node description delivered to Info listeners.
// Error is meaningful only in NodeStateError. Props borrows the engine's
// table and is only valid during the callback; Copy it to retain.
type NodeInfo struct {
	ID             uint32
	MaxInputPorts  uint32
	MaxOutputPorts uint32
	ChangeMask     uint64
	InputPorts     uint32
	OutputPorts    uint32
	State          NodeState
	Error          string
	Props          dict.Foreign
}

func decodeNodeInfo(raw *abi.NodeInfo) *NodeInfo {
	return &NodeInfo{
		ID:             raw.ID,
		MaxInputPorts:  raw.MaxInputPorts,
		MaxOutputPorts: raw.MaxOutputPorts,
		ChangeMask:     raw.ChangeMask,
		InputPorts:     raw.NInputPorts,
		OutputPorts:    raw.NOutputPorts,
		State:          raw.State,
		Error:          cstr(raw.Error),
		Props:          dict.View(raw.Props),
	}
}

// nodeHandlers is the callback bundle of one node listener registration.
type nodeHandlers struct {
	info  func(*NodeInfo)
	param func(seq int32, id, index, next uint32, param dict.Foreign)
}

func nodeInfoAdapter(ctx any, info *abi.NodeInfo) {
	h := ctx.(*nodeHandlers)
	if h.info == nil {
		panic("wirekit: node info event with no handler registered")
	}
	h.info(decodeNodeInfo(info))
}

func nodeParamAdapter(ctx any, seq int32, id, index, next uint32, param *abi.RawDict) {
	h := ctx.(*nodeHandlers)
	if h.param == nil {
		panic("wirekit: node param event with no handler registered")
	}
	h.param(seq, id, index, next, dict.View(param))
}

// NodeListenerBuilder collects node callbacks before Register installs
// them. Only supplied slots end up in the event table.
type NodeListenerBuilder struct {
	node *Node
	h    nodeHandlers
}

// AddListener starts a subscription on the node.
func (n *Node) AddListener() *NodeListenerBuilder {
	return &NodeListenerBuilder{node: n}
}

// Info sets the callback for node description changes.
func (b *NodeListenerBuilder) Info(fn func(*NodeInfo)) *NodeListenerBuilder {
	b.h.info = fn
	return b
}

// Param sets the callback for parameter enumeration results.
func (b *NodeListenerBuilder) Param(fn func(seq int32, id, index, next uint32, param dict.Foreign)) *NodeListenerBuilder {
	b.h.param = fn
	return b
}

// Register installs the subscription and returns its Listener.
func (b *NodeListenerBuilder) Register() (*Listener, error) {
	bundle := new(nodeHandlers)
	*bundle = b.h
	events := &abi.NodeEvents{Version: abi.VersionNodeEvents}
	if bundle.info != nil {
		events.Info = nodeInfoAdapter
	}
	if bundle.param != nil {
		events.Param = nodeParamAdapter
	}
	l := newListener(events, bundle)
	b.node.m.AddListener(b.node.data(), &l.hook, events, bundle)
	return l, nil
}

package bus

import (
	"syscall"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/hook"
	"github.com/opd-ai/wirekit/result"
)

// Type names the engine can serve object entities for. Globals of other
// types can be announced but not bound.
const (
	typeCoreName     = "WireKit:Interface:Core"
	typeRegistryName = "WireKit:Interface:Registry"
	typeNodeName     = "WireKit:Interface:Node"
	typePortName     = "WireKit:Interface:Port"
	typeLinkName     = "WireKit:Interface:Link"
	typeFactoryName  = "WireKit:Interface:Factory"
)

// objectEntity is the server side of one bound global: a node, port or
// link proxy held by one session.
type objectEntity struct {
	srv  *Server
	sess *coreEntity
	glob *global
	raw  *abi.Proxy

	events    *hook.List
	lifecycle *hook.List

	destroyed bool
}

type nodeListener struct {
	events *abi.NodeEvents
	ctx    any
}

type portListener struct {
	events *abi.PortEvents
	ctx    any
}

type linkListener struct {
	events *abi.LinkEvents
	ctx    any
}

var nodeMethodTable = &abi.NodeMethods{
	Version:     abi.VersionNodeMethods,
	AddListener: nodeAddListener,
	EnumParams:  objectEnumParams,
}

var portMethodTable = &abi.PortMethods{
	Version:     abi.VersionPortMethods,
	AddListener: portAddListener,
	EnumParams:  objectEnumParams,
}

var linkMethodTable = &abi.LinkMethods{
	Version:     abi.VersionLinkMethods,
	AddListener: linkAddListener,
}

// newObjectEntity binds g for the session and returns the entity, nil when
// the engine has no server object for the global's type.
func newObjectEntity(c *coreEntity, g *global) *objectEntity {
	var funcs any
	switch g.objType {
	case typeNodeName:
		funcs = nodeMethodTable
	case typePortName:
		funcs = portMethodTable
	case typeLinkName:
		funcs = linkMethodTable
	default:
		return nil
	}
	e := &objectEntity{
		srv:       c.srv,
		sess:      c,
		glob:      g,
		events:    hook.NewList(),
		lifecycle: hook.NewList(),
	}
	e.raw = &abi.Proxy{
		Iface: abi.Interface{
			Type:    abi.Str(g.objType),
			Version: g.version,
			Cb:      abi.Callbacks{Funcs: funcs, Data: e},
		},
		ID:      g.id,
		Methods: proxyMethodTable,
		Data:    e,
	}
	g.bound = append(g.bound, e)
	c.objects = append(c.objects, e)
	c.srv.bound++
	emitProxyBound(c.srv, e.lifecycle, g.id)
	return e
}

func nodeAddListener(data any, h *hook.Hook, events *abi.NodeEvents, ctx any) {
	e := data.(*objectEntity)
	e.srv.track(h)
	e.events.Append(h, &nodeListener{events: events, ctx: ctx})
	if events.Info != nil {
		info := e.nodeInfo(nodeChangeAll)
		e.srv.sched.Queue(func() {
			if h.Attached() {
				events.Info(ctx, info)
			}
		})
	}
}

func portAddListener(data any, h *hook.Hook, events *abi.PortEvents, ctx any) {
	e := data.(*objectEntity)
	e.srv.track(h)
	e.events.Append(h, &portListener{events: events, ctx: ctx})
	if events.Info != nil {
		info := e.portInfo(portChangeAll)
		e.srv.sched.Queue(func() {
			if h.Attached() {
				events.Info(ctx, info)
			}
		})
	}
}

func linkAddListener(data any, h *hook.Hook, events *abi.LinkEvents, ctx any) {
	e := data.(*objectEntity)
	e.srv.track(h)
	e.events.Append(h, &linkListener{events: events, ctx: ctx})
	if events.Info != nil {
		info := e.linkInfo(linkChangeAll)
		e.srv.sched.Queue(func() {
			if h.Attached() {
				events.Info(ctx, info)
			}
		})
	}
}

// objectEnumParams queues Param events for the stored entries under the
// requested param id, clipped to [start, start+num). A num of zero lifts
// the limit.
func objectEnumParams(data any, seq int32, id uint32, start, num uint32) int32 {
	e := data.(*objectEntity)
	if e.destroyed {
		return result.Errno(syscall.EPIPE).Raw()
	}
	var matches []paramEntry
	for _, entry := range e.glob.params {
		if entry.id == id {
			matches = append(matches, entry)
		}
	}
	end := uint32(len(matches))
	if lim := start + num; num != 0 && lim >= start && lim < end {
		end = lim
	}
	for index := start; index < end; index++ {
		e.emitParam(seq, id, index, index+1, matches[index])
	}
	return result.Pending(e.srv.nextSeq()).Raw()
}

func (e *objectEntity) emitParam(seq int32, id, index, next uint32, entry paramEntry) {
	param := entry.props.Dict()
	e.srv.sched.Queue(func() {
		e.events.Dispatch(func(p any) {
			switch l := p.(type) {
			case *nodeListener:
				if l.events.Param != nil {
					l.events.Param(l.ctx, seq, id, index, next, param)
				}
			case *portListener:
				if l.events.Param != nil {
					l.events.Param(l.ctx, seq, id, index, next, param)
				}
			}
		})
	})
}

const nodeChangeAll = abi.NodeChangeInputPorts | abi.NodeChangeOutputPorts |
	abi.NodeChangeState | abi.NodeChangeProps | abi.NodeChangeParams

const portChangeAll = abi.PortChangeProps | abi.PortChangeParams

const linkChangeAll = abi.LinkChangeState | abi.LinkChangeProps

func (e *objectEntity) nodeInfo(mask uint64) *abi.NodeInfo {
	g := e.glob
	return &abi.NodeInfo{
		ID:             g.id,
		MaxInputPorts:  propUint32(g.props, "node.max-input-ports"),
		MaxOutputPorts: propUint32(g.props, "node.max-output-ports"),
		ChangeMask:     mask,
		State:          g.nodeState,
		Error:          abi.Str(g.nodeErr),
		Props:          g.props.Dict(),
	}
}

func (e *objectEntity) portInfo(mask uint64) *abi.PortInfo {
	g := e.glob
	dir := abi.DirectionInput
	if v, ok := g.props.Get("port.direction"); ok && v == "out" {
		dir = abi.DirectionOutput
	}
	return &abi.PortInfo{
		ID:         g.id,
		Direction:  dir,
		ChangeMask: mask,
		Props:      g.props.Dict(),
	}
}

func (e *objectEntity) linkInfo(mask uint64) *abi.LinkInfo {
	g := e.glob
	return &abi.LinkInfo{
		ID:           g.id,
		OutputNodeID: propUint32(g.props, "link.output.node"),
		OutputPortID: propUint32(g.props, "link.output.port"),
		InputNodeID:  propUint32(g.props, "link.input.node"),
		InputPortID:  propUint32(g.props, "link.input.port"),
		ChangeMask:   mask,
		State:        g.linkState,
		Error:        abi.Str(g.linkErr),
		Props:        g.props.Dict(),
	}
}

func (e *objectEntity) emitNodeInfo(mask uint64) {
	info := e.nodeInfo(mask)
	e.srv.sched.Queue(func() {
		e.events.Dispatch(func(p any) {
			l, ok := p.(*nodeListener)
			if ok && l.events.Info != nil {
				l.events.Info(l.ctx, info)
			}
		})
	})
}

func (e *objectEntity) emitLinkInfo(mask uint64) {
	info := e.linkInfo(mask)
	e.srv.sched.Queue(func() {
		e.events.Dispatch(func(p any) {
			l, ok := p.(*linkListener)
			if ok && l.events.Info != nil {
				l.events.Info(l.ctx, info)
			}
		})
	})
}

func (e *objectEntity) emitRemoved() {
	emitProxyRemoved(e.srv, e.lifecycle)
}

// destroyEntity tears the binding down exactly once: the Destroy event is
// dispatched synchronously, then both listener lists are cleared and the
// entity leaves its global and session. Further calls are absorbed.
func (e *objectEntity) destroyEntity() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	dispatchProxyDestroy(e.lifecycle)
	e.events.Clear()
	e.lifecycle.Clear()
	e.srv.bound--
	e.srv.destroys++
	e.glob.removeBound(e)
	e.sess.removeObject(e)
}

func (g *global) removeBound(e *objectEntity) {
	for i, b := range g.bound {
		if b == e {
			g.bound = append(g.bound[:i], g.bound[i+1:]...)
			return
		}
	}
}

func (c *coreEntity) removeObject(e *objectEntity) {
	for i, o := range c.objects {
		if o == e {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return
		}
	}
}

func (e *objectEntity) lifecycleList() *hook.List { return e.lifecycle }
func (e *objectEntity) server() *Server           { return e.srv }

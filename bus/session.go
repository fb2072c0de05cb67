package bus

import (
	"encoding/binary"
	"fmt"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
	"github.com/opd-ai/wirekit/hook"
	"github.com/opd-ai/wirekit/result"
)

// coreEntity is one connected session: the server side of the client's
// core proxy.
type coreEntity struct {
	srv    *Server
	id     uint32
	coreID string
	cookie uint32
	props  *dict.Props

	events    *hook.List
	lifecycle *hook.List

	registries []*registryEntity
	objects    []*objectEntity

	disconnected bool
}

type coreListener struct {
	events *abi.CoreEvents
	ctx    any
}

type proxyListener struct {
	events *abi.ProxyEvents
	ctx    any
}

// lifecycleHolder is any entity whose proxy can be destroyed and listened
// to. The shared ProxyMethods adapters dispatch through it.
type lifecycleHolder interface {
	destroyEntity()
	lifecycleList() *hook.List
	server() *Server
}

// Connect opens a session and returns the raw core proxy for it. The
// Bound event for id 0 is queued, so it lands once the loop dispatches.
func (s *Server) Connect(props *dict.Props) (*abi.Proxy, error) {
	u := uuid.New()
	merged := s.baseProps.Copy()
	for k, v := range props.All() {
		merged.Set(k, v)
	}
	c := &coreEntity{
		srv:       s,
		id:        0,
		coreID:    u.String(),
		cookie:    binary.BigEndian.Uint32(u[0:4]),
		props:     merged,
		events:    hook.NewList(),
		lifecycle: hook.NewList(),
	}
	s.sessions = append(s.sessions, c)

	raw := &abi.Proxy{
		Iface: abi.Interface{
			Type:    abi.Str(typeCoreName),
			Version: abi.VersionCoreMethods,
			Cb:      abi.Callbacks{Funcs: coreMethodTable, Data: c},
		},
		ID:      0,
		Methods: proxyMethodTable,
		Data:    c,
	}
	c.emitBound(0)
	logrus.WithFields(logrus.Fields{
		"function": "Connect",
		"core_id":  c.coreID,
	}).Debug("Session connected")
	return raw, nil
}

var coreMethodTable = &abi.CoreMethods{
	Version:      abi.VersionCoreMethods,
	AddListener:  coreAddListener,
	Sync:         coreSync,
	GetRegistry:  coreGetRegistry,
	CreateObject: coreCreateObject,
	Disconnect:   coreDisconnect,
}

var proxyMethodTable = abi.ProxyMethods{
	Destroy:     entityDestroy,
	AddListener: entityAddListener,
}

func entityDestroy(data any) {
	data.(lifecycleHolder).destroyEntity()
}

func entityAddListener(data any, h *hook.Hook, events *abi.ProxyEvents, ctx any) {
	e := data.(lifecycleHolder)
	e.server().track(h)
	e.lifecycleList().Append(h, &proxyListener{events: events, ctx: ctx})
}

// track counts a subscription and arranges the count to drop when the
// hook leaves its list.
func (s *Server) track(h *hook.Hook) {
	s.listeners++
	h.Removed = func() { s.listeners-- }
}

func coreAddListener(data any, h *hook.Hook, events *abi.CoreEvents, ctx any) {
	c := data.(*coreEntity)
	c.srv.track(h)
	c.events.Append(h, &coreListener{events: events, ctx: ctx})
	if events.Info != nil {
		info := c.infoPayload()
		c.srv.sched.Queue(func() {
			if h.Attached() {
				events.Info(ctx, info)
			}
		})
	}
}

func coreSync(data any, id uint32, seq int32) int32 {
	c := data.(*coreEntity)
	if c.disconnected {
		return result.Errno(syscall.EPIPE).Raw()
	}
	s := c.srv.nextSeq()
	c.emitDone(id, s)
	return result.Pending(s).Raw()
}

func coreGetRegistry(data any, version uint32) *abi.Proxy {
	c := data.(*coreEntity)
	if c.disconnected {
		return nil
	}
	return newRegistryEntity(c, version).raw
}

func coreCreateObject(data any, factoryName []byte, objType []byte, version uint32, props *abi.RawDict) *abi.Proxy {
	c := data.(*coreEntity)
	if c.disconnected {
		return nil
	}
	name := string(abi.GoBytes(factoryName))
	if err := abi.ValidateDict(props); err != nil {
		c.emitError(0, 0, result.Errno(syscall.EINVAL).Raw(),
			fmt.Sprintf("create %q: %v", name, err))
		return nil
	}
	f, ok := c.srv.factories[name]
	if !ok {
		c.emitError(0, 0, result.Errno(syscall.ENOENT).Raw(),
			fmt.Sprintf("no factory named %q", name))
		return nil
	}
	wantType := string(abi.GoBytes(objType))
	if wantType != f.objType {
		c.emitError(0, 0, result.Errno(syscall.EINVAL).Raw(),
			fmt.Sprintf("factory %q makes %s, not %s", name, f.objType, wantType))
		return nil
	}
	out, err := f.ctor(dict.View(props).Copy())
	if err != nil {
		c.emitError(0, 0, result.Errno(syscall.EINVAL).Raw(),
			fmt.Sprintf("factory %q: %v", name, err))
		return nil
	}
	id := c.srv.AddGlobal(f.objType, f.version, out)
	ent := newObjectEntity(c, c.srv.globals[id])
	if ent == nil {
		c.emitError(0, 0, result.Errno(syscall.ENOTSUP).Raw(),
			fmt.Sprintf("factory %q makes unservable type %s", name, f.objType))
		return nil
	}
	return ent.raw
}

func coreDisconnect(data any) int32 {
	c := data.(*coreEntity)
	if c.disconnected {
		return result.Errno(syscall.EPIPE).Raw()
	}
	c.disconnected = true
	for len(c.objects) > 0 {
		c.objects[0].destroyEntity()
	}
	for len(c.registries) > 0 {
		c.registries[0].destroyEntity()
	}
	dispatchProxyDestroy(c.lifecycle)
	c.events.Clear()
	c.lifecycle.Clear()
	c.srv.dropSession(c)
	logrus.WithFields(logrus.Fields{
		"function": "Disconnect",
		"core_id":  c.coreID,
	}).Debug("Session closed")
	return 0
}

func (s *Server) dropSession(c *coreEntity) {
	for i, sess := range s.sessions {
		if sess == c {
			s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
			return
		}
	}
}

func (c *coreEntity) infoPayload() *abi.CoreInfo {
	return &abi.CoreInfo{
		ID:         c.id,
		Cookie:     c.cookie,
		UserName:   abi.Str(c.srv.userName),
		HostName:   abi.Str(c.srv.hostName),
		Version:    abi.Str("1.0"),
		Name:       abi.Str(c.srv.coreName),
		ChangeMask: abi.CoreChangeProps,
		Props:      c.coreProps().Dict(),
	}
}

func (c *coreEntity) coreProps() *dict.Props {
	p := c.props.Copy()
	p.Set("core.id", c.coreID)
	p.Set("core.name", c.srv.coreName)
	return p
}

func (c *coreEntity) emitBound(id uint32) {
	emitProxyBound(c.srv, c.lifecycle, id)
}

// emitProxyBound queues a Bound event on a lifecycle list.
func emitProxyBound(s *Server, l *hook.List, id uint32) {
	s.sched.Queue(func() {
		l.Dispatch(func(p any) {
			pl := p.(*proxyListener)
			if pl.events.Bound != nil {
				pl.events.Bound(pl.ctx, id)
			}
		})
	})
}

// emitProxyRemoved queues a Removed event on a lifecycle list.
func emitProxyRemoved(s *Server, l *hook.List) {
	s.sched.Queue(func() {
		l.Dispatch(func(p any) {
			pl := p.(*proxyListener)
			if pl.events.Removed != nil {
				pl.events.Removed(pl.ctx)
			}
		})
	})
}

// dispatchProxyDestroy delivers Destroy synchronously, inside the method
// call that tears the proxy down, so listeners observe it before the
// destroy returns.
func dispatchProxyDestroy(l *hook.List) {
	l.Dispatch(func(p any) {
		pl := p.(*proxyListener)
		if pl.events.Destroy != nil {
			pl.events.Destroy(pl.ctx)
		}
	})
}

func (c *coreEntity) emitDone(id uint32, seq int32) {
	c.srv.sched.Queue(func() {
		c.events.Dispatch(func(p any) {
			cl := p.(*coreListener)
			if cl.events.Done != nil {
				cl.events.Done(cl.ctx, id, seq)
			}
		})
	})
}

func (c *coreEntity) emitError(id uint32, seq int32, res int32, message string) {
	msg := abi.Str(message)
	c.srv.sched.Queue(func() {
		c.events.Dispatch(func(p any) {
			cl := p.(*coreListener)
			if cl.events.Error != nil {
				cl.events.Error(cl.ctx, id, seq, res, msg)
			}
		})
	})
}

func (c *coreEntity) destroyEntity() {
	if c.disconnected {
		return
	}
	coreDisconnect(c)
}

func (c *coreEntity) lifecycleList() *hook.List { return c.lifecycle }
func (c *coreEntity) server() *Server           { return c.srv }

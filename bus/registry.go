package bus

import (
	"fmt"
	"syscall"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/hook"
	"github.com/opd-ai/wirekit/result"
)

// registryEntity is the server side of one registry proxy. Every session
// can hold several; announcements fan out to all of them.
type registryEntity struct {
	srv  *Server
	sess *coreEntity
	id   uint32
	raw  *abi.Proxy

	events    *hook.List
	lifecycle *hook.List

	destroyed bool
}

type registryListener struct {
	h      *hook.Hook
	events *abi.RegistryEvents
	ctx    any
}

var registryMethodTable = &abi.RegistryMethods{
	Version:     abi.VersionRegistryMethods,
	AddListener: registryAddListener,
	Bind:        registryBind,
}

func newRegistryEntity(c *coreEntity, version uint32) *registryEntity {
	served := version
	if served == 0 || served > abi.VersionRegistryMethods {
		served = abi.VersionRegistryMethods
	}
	r := &registryEntity{
		srv:       c.srv,
		sess:      c,
		id:        c.srv.allocID(),
		events:    hook.NewList(),
		lifecycle: hook.NewList(),
	}
	r.raw = &abi.Proxy{
		Iface: abi.Interface{
			Type:    abi.Str(typeRegistryName),
			Version: served,
			Cb:      abi.Callbacks{Funcs: registryMethodTable, Data: r},
		},
		ID:      r.id,
		Methods: proxyMethodTable,
		Data:    r,
	}
	c.registries = append(c.registries, r)
	c.srv.registries = append(c.srv.registries, r)
	emitProxyBound(c.srv, r.lifecycle, r.id)
	return r
}

// registryAddListener subscribes and queues a replay of the globals that
// exist right now, so late listeners still see the whole directory. A
// global added between subscription and replay is announced by its own
// queued event, which the loop runs after the replay.
func registryAddListener(data any, h *hook.Hook, events *abi.RegistryEvents, ctx any) {
	r := data.(*registryEntity)
	r.srv.track(h)
	r.events.Append(h, &registryListener{h: h, events: events, ctx: ctx})
	if events.Global == nil {
		return
	}
	snapshot := r.srv.globalSnapshot()
	r.srv.sched.Queue(func() {
		if !h.Attached() {
			return
		}
		for _, g := range snapshot {
			events.Global(ctx, g.info())
		}
	})
}

func registryBind(data any, id uint32, objType []byte, version uint32) *abi.Proxy {
	r := data.(*registryEntity)
	if r.destroyed {
		return nil
	}
	if r.srv.failNextBind {
		r.srv.failNextBind = false
		return nil
	}
	g, ok := r.srv.globals[id]
	if !ok {
		r.sess.emitError(r.id, 0, result.Errno(syscall.ENOENT).Raw(),
			fmt.Sprintf("no global %d", id))
		return nil
	}
	want := string(abi.GoBytes(objType))
	if want != g.objType {
		r.sess.emitError(r.id, 0, result.Errno(syscall.EINVAL).Raw(),
			fmt.Sprintf("global %d is %s, not %s", id, g.objType, want))
		return nil
	}
	if version > g.version {
		r.sess.emitError(r.id, 0, result.Errno(syscall.EPROTO).Raw(),
			fmt.Sprintf("global %d speaks version %d, client wants %d", id, g.version, version))
		return nil
	}
	ent := newObjectEntity(r.sess, g)
	if ent == nil {
		r.sess.emitError(r.id, 0, result.Errno(syscall.ENOTSUP).Raw(),
			fmt.Sprintf("no server object for type %s", g.objType))
		return nil
	}
	return ent.raw
}

// announce queues a Global event for g to the listeners subscribed right
// now. Later subscribers see g through their own replay instead; delivering
// to the membership at queue time keeps the two paths disjoint.
func (r *registryEntity) announce(g *global) {
	targets := r.listeners()
	if len(targets) == 0 {
		return
	}
	info := g.info()
	r.srv.sched.Queue(func() {
		for _, rl := range targets {
			if !rl.h.Attached() {
				continue
			}
			if rl.events.Global != nil {
				rl.events.Global(rl.ctx, info)
			}
		}
	})
}

// withdraw queues a GlobalRemove event for id to the current listeners. A
// listener subscribed after the removal never saw the global and gets
// neither event.
func (r *registryEntity) withdraw(id uint32) {
	targets := r.listeners()
	if len(targets) == 0 {
		return
	}
	r.srv.sched.Queue(func() {
		for _, rl := range targets {
			if !rl.h.Attached() {
				continue
			}
			if rl.events.GlobalRemove != nil {
				rl.events.GlobalRemove(rl.ctx, id)
			}
		}
	})
}

// listeners snapshots the subscription list in registration order.
func (r *registryEntity) listeners() []*registryListener {
	out := make([]*registryListener, 0, r.events.Len())
	r.events.Dispatch(func(p any) {
		out = append(out, p.(*registryListener))
	})
	return out
}

func (r *registryEntity) destroyEntity() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	dispatchProxyDestroy(r.lifecycle)
	r.events.Clear()
	r.lifecycle.Clear()
	r.srv.removeRegistry(r)
	r.sess.removeRegistry(r)
}

func (s *Server) removeRegistry(r *registryEntity) {
	for i, reg := range s.registries {
		if reg == r {
			s.registries = append(s.registries[:i], s.registries[i+1:]...)
			return
		}
	}
}

func (c *coreEntity) removeRegistry(r *registryEntity) {
	for i, reg := range c.registries {
		if reg == r {
			c.registries = append(c.registries[:i], c.registries[i+1:]...)
			return
		}
	}
}

func (r *registryEntity) lifecycleList() *hook.List { return r.lifecycle }
func (r *registryEntity) server() *Server           { return r.srv }

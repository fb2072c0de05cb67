package bus

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
	"github.com/opd-ai/wirekit/dict"
)

// Scheduler is where the engine queues event delivery. Connecting clients
// hand over their loop, so every event fires inside that loop's dispatch.
type Scheduler interface {
	Queue(fn func())
}

// FactoryFunc prepares the properties of an object a server factory
// creates. It may inspect the caller's arguments and returns the props the
// new global is announced with.
type FactoryFunc func(args *dict.Props) (*dict.Props, error)

type serverFactory struct {
	name    string
	objType string
	version uint32
	ctor    FactoryFunc
}

// global is one server-side object in the directory.
type global struct {
	id      uint32
	objType string
	version uint32
	perms   uint32
	props   *dict.Props

	// object state the engine lets tests and tools drive
	nodeState abi.NodeState
	nodeErr   string
	linkState abi.LinkState
	linkErr   string
	params    []paramEntry

	bound []*objectEntity
}

type paramEntry struct {
	id    uint32
	props *dict.Props
}

// Server is an in-process engine: the directory of globals, the factories,
// and the sessions connected to them. It is loop-confined like its
// clients; drive it from test setup and from callbacks, not from other
// goroutines.
type Server struct {
	sched     Scheduler
	coreName  string
	userName  string
	hostName  string
	baseProps *dict.Props

	nextID    uint32
	seq       int32
	globals   map[uint32]*global
	factories map[string]*serverFactory

	sessions   []*coreEntity
	registries []*registryEntity

	listeners    int
	bound        int
	destroys     int
	failNextBind bool
}

// ServerOption configures a Server at construction.
type ServerOption func(*Server)

// WithCoreName sets the name sessions report in their core info.
func WithCoreName(name string) ServerOption {
	return func(s *Server) { s.coreName = name }
}

// WithServerProperties adds properties to every session's core info.
func WithServerProperties(p *dict.Props) ServerOption {
	return func(s *Server) { s.baseProps = p.Copy() }
}

// NewServer creates an engine delivering events through sched.
func NewServer(sched Scheduler, opts ...ServerOption) (*Server, error) {
	if sched == nil {
		return nil, errors.New("scheduler is nil")
	}
	hostName, err := os.Hostname()
	if err != nil {
		hostName = "localhost"
	}
	userName := os.Getenv("USER")
	if userName == "" {
		userName = "wirekit"
	}
	s := &Server{
		sched:     sched,
		coreName:  "wirekit-bus",
		userName:  userName,
		hostName:  hostName,
		globals:   make(map[uint32]*global),
		factories: make(map[string]*serverFactory),
	}
	for _, opt := range opts {
		opt(s)
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewServer",
		"name":     s.coreName,
	}).Debug("Engine created")
	return s, nil
}

func (s *Server) allocID() uint32 {
	s.nextID++
	return s.nextID
}

func (s *Server) nextSeq() int32 {
	s.seq++
	return s.seq
}

// AddGlobal announces a new object to every registry listener and returns
// its id. Properties are copied; the announcement carries full
// permissions.
func (s *Server) AddGlobal(objType string, version uint32, props *dict.Props) uint32 {
	g := &global{
		id:        s.allocID(),
		objType:   objType,
		version:   version,
		perms:     abi.PermRead | abi.PermWrite | abi.PermExec | abi.PermMeta,
		props:     props.Copy(),
		nodeState: abi.NodeStateSuspended,
		linkState: abi.LinkStateInit,
	}
	s.globals[g.id] = g
	for _, r := range s.registries {
		r.announce(g)
	}
	logrus.WithFields(logrus.Fields{
		"function": "AddGlobal",
		"id":       g.id,
		"type":     objType,
	}).Debug("Global added")
	return g.id
}

// RemoveGlobal withdraws a global: registry listeners get GlobalRemove and
// every proxy bound to it gets Removed.
func (s *Server) RemoveGlobal(id uint32) {
	g, ok := s.globals[id]
	if !ok {
		return
	}
	delete(s.globals, id)
	for _, r := range s.registries {
		r.withdraw(id)
	}
	for _, e := range g.bound {
		e.emitRemoved()
	}
}

// AddFactory registers a server-side factory for CreateObject and
// announces it as a TypeFactory-style global.
func (s *Server) AddFactory(name, objType string, version uint32, ctor FactoryFunc) {
	if ctor == nil {
		panic("bus: AddFactory with nil constructor")
	}
	if _, dup := s.factories[name]; dup {
		panic("bus: AddFactory called twice for " + name)
	}
	s.factories[name] = &serverFactory{name: name, objType: objType, version: version, ctor: ctor}
	s.AddGlobal(typeFactoryName, 1, dict.New(
		"factory.name", name,
		"factory.type.name", objType,
		"factory.type.version", strconv.FormatUint(uint64(version), 10),
	))
}

// FailNextBind makes the next Bind return a nil proxy, exercising the
// client's out-of-memory path.
func (s *Server) FailNextBind() {
	s.failNextBind = true
}

// BoundCount reports how many object proxies are currently bound.
func (s *Server) BoundCount() int {
	return s.bound
}

// DestroyCount reports how many object proxies have been destroyed.
func (s *Server) DestroyCount() int {
	return s.destroys
}

// ListenerCount reports how many event subscriptions are live across all
// objects, sessions included.
func (s *Server) ListenerCount() int {
	return s.listeners
}

// SetNodeState drives the state of a node global, delivering Info to the
// listeners of every proxy bound to it. errMsg is reported only with
// NodeStateError.
func (s *Server) SetNodeState(id uint32, state abi.NodeState, errMsg string) error {
	g, ok := s.globals[id]
	if !ok {
		return fmt.Errorf("no global %d", id)
	}
	g.nodeState = state
	g.nodeErr = errMsg
	for _, e := range g.bound {
		e.emitNodeInfo(abi.NodeChangeState)
	}
	return nil
}

// SetLinkState drives the state of a link global, delivering Info to the
// listeners of every proxy bound to it.
func (s *Server) SetLinkState(id uint32, state abi.LinkState, errMsg string) error {
	g, ok := s.globals[id]
	if !ok {
		return fmt.Errorf("no global %d", id)
	}
	g.linkState = state
	g.linkErr = errMsg
	for _, e := range g.bound {
		e.emitLinkInfo(abi.LinkChangeState)
	}
	return nil
}

// PushParam appends a parameter under the given param id on a global.
// EnumParams walks these entries.
func (s *Server) PushParam(id uint32, paramID uint32, props *dict.Props) error {
	g, ok := s.globals[id]
	if !ok {
		return fmt.Errorf("no global %d", id)
	}
	g.params = append(g.params, paramEntry{id: paramID, props: props.Copy()})
	return nil
}

// globalSnapshot returns the current globals in announcement order.
func (s *Server) globalSnapshot() []*global {
	ids := make([]uint32, 0, len(s.globals))
	for id := range s.globals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*global, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.globals[id])
	}
	return out
}

func (g *global) info() *abi.GlobalInfo {
	return &abi.GlobalInfo{
		ID:          g.id,
		Permissions: g.perms,
		Type:        abi.Str(g.objType),
		Version:     g.version,
		Props:       g.props.Dict(),
	}
}

// propUint32 reads a numeric property, zero when absent or malformed.
func propUint32(p *dict.Props, key string) uint32 {
	if v, ok := p.Get(key); ok {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			return uint32(n)
		}
	}
	return 0
}

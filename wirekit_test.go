package wirekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/wirekit/bus"
	"github.com/opd-ai/wirekit/dict"
)

// session bundles the pieces every connected test needs.
type session struct {
	loop *MainLoop
	srv  *bus.Server
	ctx  *Context
	core *Core
}

// newSession connects a client to a fresh in-process engine. The caller
// drives event delivery with flush.
func newSession(t *testing.T, opts ...bus.ServerOption) *session {
	t.Helper()
	loop, err := NewMainLoop()
	if err != nil {
		t.Fatalf("NewMainLoop() error = %v", err)
	}
	srv, err := bus.NewServer(loop, opts...)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ctx, err := NewContext(loop, WithRemote(srv))
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	core, err := ctx.Connect(nil)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	s := &session{loop: loop, srv: srv, ctx: ctx, core: core}
	s.flush()
	return s
}

// flush dispatches until the loop goes idle and reports how many
// callbacks ran.
func (s *session) flush() int {
	n := 0
	for {
		ran := s.loop.Iterate(false)
		if ran == 0 {
			return n
		}
		n += ran
	}
}

// registry binds the registry singleton and flushes the Bound event.
func (s *session) registry(t *testing.T) *Registry {
	t.Helper()
	reg, err := s.core.GetRegistry(0)
	if err != nil {
		t.Fatalf("GetRegistry() error = %v", err)
	}
	s.flush()
	return reg
}

// addNode announces a node global and returns its id and announcement.
func (s *session) addNode(t *testing.T, reg *Registry, name string) (uint32, *GlobalObject) {
	t.Helper()
	var got *GlobalObject
	l, err := reg.AddListener().
		Global(func(g *GlobalObject) { got = g }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()
	id := s.srv.AddGlobal(string(TypeNode), 1, dict.New("node.name", name))
	s.flush()
	if got == nil || got.ID != id {
		t.Fatalf("announcement for global %d never arrived", id)
	}
	return id, got
}

// TestSessionRoundTrip walks the whole happy path: connect, read the core
// info, watch the registry, bind a node, observe its info, sync, and shut
// everything down.
func TestSessionRoundTrip(t *testing.T) {
	s := newSession(t, bus.WithCoreName("round-trip"))

	var info *CoreInfo
	var coreID string
	infoListener, err := s.core.AddListener().
		Info(func(i *CoreInfo) {
			info = i
			coreID, _ = i.Props.Get("core.id")
		}).
		Register()
	require.NoError(t, err, "core info subscription")
	defer infoListener.Close()
	s.flush()

	require.NotNil(t, info, "core info must be replayed to new listeners")
	assert.Equal(t, CoreID, info.ID, "core info id")
	assert.Equal(t, "round-trip", info.Name, "core name")
	assert.Len(t, coreID, 36, "core.id should be a uuid")

	reg := s.registry(t)
	var globals []*GlobalObject
	regListener, err := reg.AddListener().
		Global(func(g *GlobalObject) { globals = append(globals, g) }).
		Register()
	require.NoError(t, err, "registry subscription")
	defer regListener.Close()

	nodeID := s.srv.AddGlobal(string(TypeNode), 1, dict.New("node.name", "mic"))
	s.flush()
	require.Len(t, globals, 1, "one announcement expected")
	assert.Equal(t, TypeNode, globals[0].Type, "announced type")

	node, err := BindAs[*Node](reg, globals[0])
	require.NoError(t, err, "typed bind")
	s.flush()
	assert.Equal(t, nodeID, node.ID(), "bound id")
	assert.Equal(t, ProxyBound, node.Proxy().State(), "proxy state after bind")

	var nodeInfo *NodeInfo
	nodeListener, err := node.AddListener().
		Info(func(i *NodeInfo) { nodeInfo = i }).
		Register()
	require.NoError(t, err, "node subscription")
	defer nodeListener.Close()
	s.flush()
	require.NotNil(t, nodeInfo, "node info must be replayed")
	name, _ := nodeInfo.Props.Get("node.name")
	assert.Equal(t, "mic", name, "node.name property")

	var doneSeq int32 = -1
	doneListener, err := s.core.AddListener().
		Done(func(id uint32, seq int32) {
			if id == CoreID {
				doneSeq = seq
			}
		}).
		Register()
	require.NoError(t, err, "done subscription")
	defer doneListener.Close()

	code, err := s.core.Sync(CoreID)
	require.NoError(t, err, "sync")
	require.True(t, code.IsPending(), "sync must return a pending code")
	s.flush()
	assert.Equal(t, code.Seq(), doneSeq, "done must carry the sync sequence")

	node.Proxy().Destroy()
	assert.Equal(t, ProxyDestroyed, node.Proxy().State(), "state after destroy")
	assert.Equal(t, 0, s.srv.BoundCount(), "no bound objects after destroy")

	require.NoError(t, s.core.Disconnect(), "disconnect")
	err = s.core.Disconnect()
	assert.ErrorIs(t, err, ErrDisconnected, "second disconnect")
	s.flush()
}

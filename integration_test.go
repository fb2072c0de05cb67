package wirekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/wirekit/bus"
	"github.com/opd-ai/wirekit/dict"
)

// dialSecond connects another client to the session's engine through a
// context of its own.
func dialSecond(t *testing.T, s *session) *Core {
	t.Helper()
	ctx, err := NewContext(s.loop, WithRemote(s.srv))
	require.NoError(t, err, "second context")
	core, err := ctx.Connect(dict.New("application.name", "second"))
	require.NoError(t, err, "second connect")
	s.flush()
	return core
}

// TestTwoClientsOneEngine runs two sessions against one engine. An object
// the first client creates through a factory is announced to the second,
// both watch the engine withdraw it, and disconnecting the first leaves
// the second fully working.
func TestTwoClientsOneEngine(t *testing.T) {
	s := newSession(t, bus.WithCoreName("shared-engine"))
	s.srv.AddFactory("mixer-factory", string(TypeNode), 1, func(args *dict.Props) (*dict.Props, error) {
		props := args.Copy()
		props.Set("factory.name", "mixer-factory")
		return props, nil
	})

	coreB := dialSecond(t, s)
	regB, err := coreB.GetRegistry(0)
	require.NoError(t, err, "second registry")

	type seen struct {
		id      uint32
		objType ObjectType
		factory string
	}
	var announced []seen
	var removed []uint32
	var mixer *GlobalObject
	regListener, err := regB.AddListener().
		Global(func(g *GlobalObject) {
			factory, _ := g.Props.Get("factory.name")
			announced = append(announced, seen{id: g.ID, objType: g.Type, factory: factory})
			if factory == "mixer-factory" {
				mixer = g
			}
		}).
		GlobalRemove(func(id uint32) { removed = append(removed, id) }).
		Register()
	require.NoError(t, err, "registry subscription")
	defer regListener.Close()
	s.flush()

	require.Len(t, announced, 1, "replay should announce the factory global")
	assert.Equal(t, TypeFactory, announced[0].objType, "replayed type")

	created, err := s.core.CreateObject("mixer-factory", TypeNode, 1, dict.New("node.name", "mixer"))
	require.NoError(t, err, "create through factory")
	s.flush()

	require.NotNil(t, mixer, "second client must see the created node")
	assert.Equal(t, created.ID(), mixer.ID, "announced id matches the created proxy")
	assert.Equal(t, TypeNode, mixer.Type, "announced type")
	assert.Equal(t, 1, s.srv.BoundCount(), "creator holds the only binding")

	nodeB, err := BindAs[*Node](regB, mixer)
	require.NoError(t, err, "second client bind")
	s.flush()
	assert.Equal(t, 2, s.srv.BoundCount(), "both clients bound")

	var name string
	infoListener, err := nodeB.AddListener().
		Info(func(i *NodeInfo) { name, _ = i.Props.Get("node.name") }).
		Register()
	require.NoError(t, err, "node subscription")
	defer infoListener.Close()
	s.flush()
	assert.Equal(t, "mixer", name, "factory args must flow into the global's props")

	var removedA, removedB bool
	la, err := created.AddListener().Removed(func() { removedA = true }).Register()
	require.NoError(t, err, "creator proxy subscription")
	defer la.Close()
	lb, err := nodeB.Proxy().AddListener().Removed(func() { removedB = true }).Register()
	require.NoError(t, err, "binder proxy subscription")
	defer lb.Close()

	s.srv.RemoveGlobal(created.ID())
	s.flush()
	require.Contains(t, removed, created.ID(), "second registry must see the removal")
	assert.True(t, removedA, "creator proxy removed event")
	assert.True(t, removedB, "binder proxy removed event")
	assert.Equal(t, ProxyRemoved, created.State(), "creator proxy state")
	assert.Equal(t, ProxyRemoved, nodeB.Proxy().State(), "binder proxy state")
	assert.Equal(t, 2, s.srv.BoundCount(), "withdrawal alone releases nothing")

	created.Destroy()
	nodeB.Proxy().Destroy()
	s.flush()
	assert.Equal(t, 0, s.srv.BoundCount(), "all bindings released")
	assert.Equal(t, 2, s.srv.DestroyCount(), "one destroy per binding")

	require.NoError(t, s.core.Disconnect(), "first client disconnect")
	s.flush()

	var doneSeq int32 = -1
	doneListener, err := coreB.AddListener().
		Done(func(id uint32, seq int32) {
			if id == CoreID {
				doneSeq = seq
			}
		}).
		Register()
	require.NoError(t, err, "done subscription")
	defer doneListener.Close()
	code, err := coreB.Sync(CoreID)
	require.NoError(t, err, "second client must survive the first leaving")
	s.flush()
	assert.Equal(t, code.Seq(), doneSeq, "sync round-trip on the surviving client")
	require.NoError(t, coreB.Disconnect(), "second client disconnect")
}

// TestPortParamRoundTrip pushes parameters into a port global and reads
// them back through the port's enumeration call.
func TestPortParamRoundTrip(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	g := addTyped(t, s, reg, TypePort)
	port, err := BindAs[*Port](reg, g)
	require.NoError(t, err, "port bind")
	s.flush()

	require.NoError(t, s.srv.PushParam(g.ID, 3, dict.New("format", "S16LE")), "push first param")
	require.NoError(t, s.srv.PushParam(g.ID, 3, dict.New("format", "F32LE")), "push second param")

	type param struct {
		seq         int32
		index, next uint32
		format      string
	}
	var got []param
	listener, err := port.AddListener().
		Param(func(seq int32, id, index, next uint32, p dict.Foreign) {
			format, _ := p.Get("format")
			got = append(got, param{seq: seq, index: index, next: next, format: format})
		}).
		Register()
	require.NoError(t, err, "param subscription")
	defer listener.Close()

	require.NoError(t, port.EnumParams(21, 3, 0, 0), "full enumeration")
	s.flush()
	require.Len(t, got, 2, "both params delivered")
	assert.Equal(t, param{seq: 21, index: 0, next: 1, format: "S16LE"}, got[0], "first entry")
	assert.Equal(t, param{seq: 21, index: 1, next: 2, format: "F32LE"}, got[1], "second entry")

	got = nil
	require.NoError(t, port.EnumParams(22, 3, 1, 1), "windowed enumeration")
	s.flush()
	require.Len(t, got, 1, "window of one")
	assert.Equal(t, param{seq: 22, index: 1, next: 2, format: "F32LE"}, got[0], "windowed entry")

	got = nil
	require.NoError(t, port.EnumParams(23, 9, 0, 0), "enumerating an id with no params")
	s.flush()
	assert.Empty(t, got, "no deliveries for an unknown param id")
	port.Proxy().Destroy()
}

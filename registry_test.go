package wirekit

import (
	"errors"
	"syscall"
	"testing"

	"github.com/opd-ai/wirekit/dict"
)

func TestRegistryReplay(t *testing.T) {
	s := newSession(t)
	early := s.srv.AddGlobal(string(TypeNode), 1, dict.New("node.name", "early"))
	reg := s.registry(t)

	var seen []uint32
	l, err := reg.AddListener().
		Global(func(g *GlobalObject) { seen = append(seen, g.ID) }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()
	s.flush()

	if len(seen) != 1 || seen[0] != early {
		t.Fatalf("replayed globals = %v, want [%d]", seen, early)
	}

	late := s.srv.AddGlobal(string(TypeNode), 1, dict.New("node.name", "late"))
	s.flush()
	if len(seen) != 2 || seen[1] != late {
		t.Errorf("announcements = %v, want replay then %d", seen, late)
	}
}

func TestRegistryGlobalRemove(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	id, _ := s.addNode(t, reg, "doomed")

	var removed []uint32
	l, err := reg.AddListener().
		GlobalRemove(func(id uint32) { removed = append(removed, id) }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()

	s.srv.RemoveGlobal(id)
	s.flush()
	if len(removed) != 1 || removed[0] != id {
		t.Errorf("GlobalRemove = %v, want [%d]", removed, id)
	}
}

func TestRegistryAnnouncementFields(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)

	var got *GlobalObject
	var name string
	l, err := reg.AddListener().
		Global(func(g *GlobalObject) {
			got = g
			name, _ = g.Props.Get("node.name")
		}).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()

	id := s.srv.AddGlobal(string(TypeNode), 1, dict.New("node.name", "cam"))
	s.flush()

	if got == nil {
		t.Fatal("announcement never arrived")
	}
	if got.ID != id {
		t.Errorf("ID = %d, want %d", got.ID, id)
	}
	if got.Type != TypeNode {
		t.Errorf("Type = %q, want %q", got.Type, TypeNode)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if got.Permissions == 0 {
		t.Error("Permissions = 0, want announcement to carry permission bits")
	}
	if name != "cam" {
		t.Errorf("node.name = %q, want %q", name, "cam")
	}
}

func TestBindNode(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	id, g := s.addNode(t, reg, "mic")

	obj, err := reg.Bind(g)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	node, ok := obj.(*Node)
	if !ok {
		t.Fatalf("Bind() returned %T, want *Node", obj)
	}
	s.flush()

	if node.ID() != id {
		t.Errorf("ID() = %d, want %d", node.ID(), id)
	}
	if node.Type() != TypeNode {
		t.Errorf("Type() = %q, want %q", node.Type(), TypeNode)
	}
	if node.Proxy().State() != ProxyBound {
		t.Errorf("State() = %v, want %v", node.Proxy().State(), ProxyBound)
	}
	if s.srv.BoundCount() != 1 {
		t.Errorf("BoundCount() = %d, want 1", s.srv.BoundCount())
	}

	node.Proxy().Destroy()
	if s.srv.BoundCount() != 0 {
		t.Errorf("BoundCount() after destroy = %d, want 0", s.srv.BoundCount())
	}
}

func TestBindUnknownType(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)

	var got *GlobalObject
	l, err := reg.AddListener().
		Global(func(g *GlobalObject) { got = g }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()
	s.srv.AddGlobal(string(TypeDevice), 1, nil)
	s.flush()
	if got == nil {
		t.Fatal("announcement never arrived")
	}

	_, err = reg.Bind(got)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Bind() error = %v, want ErrUnknownType", err)
	}
	if s.srv.BoundCount() != 0 {
		t.Errorf("BoundCount() = %d, no engine call expected", s.srv.BoundCount())
	}
}

func TestBindAllocationFailure(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	_, g := s.addNode(t, reg, "mic")

	s.srv.FailNextBind()
	_, err := reg.Bind(g)
	if !errors.Is(err, syscall.ENOMEM) {
		t.Errorf("Bind() error = %v, want ENOMEM", err)
	}

	if _, err := reg.Bind(g); err != nil {
		t.Errorf("Bind() after consumed failure error = %v", err)
	}
}

// addTyped announces one global of the given type and returns its
// announcement.
func addTyped(t *testing.T, s *session, reg *Registry, objType ObjectType) *GlobalObject {
	t.Helper()
	var got *GlobalObject
	l, err := reg.AddListener().
		Global(func(g *GlobalObject) { got = g }).
		Register()
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer l.Close()
	s.srv.AddGlobal(string(objType), 1, nil)
	s.flush()
	if got == nil {
		t.Fatalf("announcement for %s never arrived", objType)
	}
	return got
}

func TestBindAsMismatchDestroysProxy(t *testing.T) {
	tests := []struct {
		name    string
		objType ObjectType
		bind    func(r *Registry, g *GlobalObject) error
	}{
		{"node as port", TypeNode, func(r *Registry, g *GlobalObject) error {
			_, err := BindAs[*Port](r, g)
			return err
		}},
		{"node as link", TypeNode, func(r *Registry, g *GlobalObject) error {
			_, err := BindAs[*Link](r, g)
			return err
		}},
		{"port as node", TypePort, func(r *Registry, g *GlobalObject) error {
			_, err := BindAs[*Node](r, g)
			return err
		}},
		{"link as port", TypeLink, func(r *Registry, g *GlobalObject) error {
			_, err := BindAs[*Port](r, g)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(t)
			reg := s.registry(t)
			g := addTyped(t, s, reg, tt.objType)
			destroysBefore := s.srv.DestroyCount()

			err := tt.bind(reg, g)
			if !errors.Is(err, ErrWrongProxyType) {
				t.Fatalf("BindAs error = %v, want ErrWrongProxyType", err)
			}
			if s.srv.BoundCount() != 0 {
				t.Errorf("BoundCount() = %d, mismatched bind must not leak", s.srv.BoundCount())
			}
			if got := s.srv.DestroyCount() - destroysBefore; got != 1 {
				t.Errorf("destroys during mismatch = %d, want exactly 1", got)
			}
		})
	}
}

func TestBindAsMatch(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	g := addTyped(t, s, reg, TypeLink)

	link, err := BindAs[*Link](reg, g)
	if err != nil {
		t.Fatalf("BindAs() error = %v", err)
	}
	if link.Type() != TypeLink {
		t.Errorf("Type() = %q, want %q", link.Type(), TypeLink)
	}
	if s.srv.BoundCount() != 1 {
		t.Errorf("BoundCount() = %d, want 1", s.srv.BoundCount())
	}
	link.Proxy().Destroy()
}

func TestBindAsUnknownType(t *testing.T) {
	s := newSession(t)
	reg := s.registry(t)
	g := addTyped(t, s, reg, TypeMetadata)

	_, err := BindAs[*Node](reg, g)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("BindAs() error = %v, want ErrUnknownType", err)
	}
}

func TestClientVersion(t *testing.T) {
	tests := []struct {
		objType ObjectType
		want    uint32
		ok      bool
	}{
		{TypeNode, 1, true},
		{TypePort, 1, true},
		{TypeLink, 1, true},
		{TypeCore, 1, true},
		{TypeRegistry, 1, true},
		{TypeDevice, 0, false},
		{ObjectType("Nonsense"), 0, false},
	}
	for _, tt := range tests {
		v, ok := tt.objType.ClientVersion()
		if v != tt.want || ok != tt.ok {
			t.Errorf("ClientVersion(%q) = (%d, %v), want (%d, %v)",
				tt.objType, v, ok, tt.want, tt.ok)
		}
	}
}

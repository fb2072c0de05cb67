package wirekit

import (
	"github.com/opd-ai/wirekit/abi"
)

// ObjectType names the interface a remote object implements. The registry
// announces globals by these names and binding consults them.
type ObjectType string

const (
	TypeCore     ObjectType = "WireKit:Interface:Core"
	TypeRegistry ObjectType = "WireKit:Interface:Registry"
	TypeNode     ObjectType = "WireKit:Interface:Node"
	TypePort     ObjectType = "WireKit:Interface:Port"
	TypeLink     ObjectType = "WireKit:Interface:Link"
	TypeFactory  ObjectType = "WireKit:Interface:Factory"
	TypeClient   ObjectType = "WireKit:Interface:Client"
	TypeDevice   ObjectType = "WireKit:Interface:Device"
	TypeModule   ObjectType = "WireKit:Interface:Module"
	TypeProfiler ObjectType = "WireKit:Interface:Profiler"
	TypeMetadata ObjectType = "WireKit:Interface:Metadata"
)

// ClientVersion reports the interface version this client speaks for the
// type, false when it has no wrapper for it. Binding a false type fails
// with ErrUnknownType rather than guessing a version.
func (t ObjectType) ClientVersion() (uint32, bool) {
	if k, ok := kinds[t]; ok {
		return k.version, true
	}
	switch t {
	case TypeCore:
		return abi.VersionCoreMethods, true
	case TypeRegistry:
		return abi.VersionRegistryMethods, true
	}
	return 0, false
}

// ProxyObject is a typed wrapper over a bound proxy. Node, Port and Link
// implement it; Registry.Bind returns one.
type ProxyObject interface {
	ID() uint32
	Type() ObjectType
	Proxy() *Proxy
}

// kind describes how to wrap a bound proxy of one object type.
type kind struct {
	version uint32
	ctor    func(*Proxy) ProxyObject
}

var kinds = make(map[ObjectType]kind)

// RegisterKind declares a client wrapper for an object type: the interface
// version to request at bind time and the constructor Registry.Bind calls
// on the wrapped proxy. Registration is not safe for concurrent use; do it
// at program setup. Registering a type twice panics.
func RegisterKind(t ObjectType, version uint32, ctor func(*Proxy) ProxyObject) {
	if ctor == nil {
		panic("wirekit: RegisterKind with nil constructor")
	}
	if _, dup := kinds[t]; dup {
		panic("wirekit: RegisterKind called twice for " + string(t))
	}
	kinds[t] = kind{version: version, ctor: ctor}
}

func init() {
	RegisterKind(TypeNode, abi.VersionNodeMethods, newNodeObject)
	RegisterKind(TypePort, abi.VersionPortMethods, newPortObject)
	RegisterKind(TypeLink, abi.VersionLinkMethods, newLinkObject)
}

// cstr decodes an optional NUL-terminated boundary string for diagnostics
// and info payloads. Nil means absent; non-UTF-8 content comes back empty.
func cstr(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	s, _ := abi.GoStr(b)
	return s
}

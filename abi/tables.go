package abi

import "github.com/opd-ai/wirekit/hook"

// Versions of the table contracts declared in this file. A table's Version
// field names the revision of its struct layout, not of the object behind it.
const (
	VersionCoreMethods     uint32 = 1
	VersionCoreEvents      uint32 = 1
	VersionRegistryMethods uint32 = 1
	VersionRegistryEvents  uint32 = 1
	VersionNodeMethods     uint32 = 1
	VersionNodeEvents      uint32 = 1
	VersionPortMethods     uint32 = 1
	VersionPortEvents      uint32 = 1
	VersionLinkMethods     uint32 = 1
	VersionLinkEvents      uint32 = 1
	VersionProxyEvents     uint32 = 1
)

// Permission bits attached to globals the registry announces.
const (
	PermRead  uint32 = 1 << 0
	PermWrite uint32 = 1 << 1
	PermExec  uint32 = 1 << 2
	PermMeta  uint32 = 1 << 3
)

// Proxy is the engine's representation of one remote object held by one
// client: the self-describing interface header of the object, the
// server-assigned id, and the proxy-lifetime method table. The client
// runtime wraps it; engines return it from connect, bind and create calls.
type Proxy struct {
	Iface   Interface
	ID      uint32
	Methods ProxyMethods
	Data    any
}

// ProxyMethods is the proxy-lifetime table every engine object carries
// alongside its per-type method table. Data is Proxy.Data, not
// Iface.Cb.Data.
type ProxyMethods struct {
	Destroy     func(data any)
	AddListener func(data any, h *hook.Hook, events *ProxyEvents, ctx any)
}

// ProxyEvents notify about the lifetime of one proxy.
// Nil slots are not subscribed and must be skipped by the dispatcher.
type ProxyEvents struct {
	Version uint32
	// Bound reports the server-assigned id once the object is bound.
	Bound func(ctx any, id uint32)
	// Removed reports that the server withdrew the object.
	Removed func(ctx any)
	// Destroy reports client-initiated destruction, exactly once.
	Destroy func(ctx any)
}

// GlobalInfo is the payload of a registry global announcement.
// Type is a NUL-terminated object type name; Props is borrowed for the
// duration of the delivering call.
type GlobalInfo struct {
	ID          uint32
	Permissions uint32
	Type        []byte
	Version     uint32
	Props       *RawDict
}

// CoreInfo describes the core object of a connected session. The string
// fields are NUL-terminated; Props is borrowed for the delivering call.
type CoreInfo struct {
	ID         uint32
	Cookie     uint32
	UserName   []byte
	HostName   []byte
	Version    []byte
	Name       []byte
	ChangeMask uint64
	Props      *RawDict
}

// Core info change mask bits.
const (
	CoreChangeProps uint64 = 1 << 0
)

// CoreMethods is the method table of the core object.
type CoreMethods struct {
	Version     uint32
	AddListener func(data any, h *hook.Hook, events *CoreEvents, ctx any)
	// Sync requests a done event carrying the returned sequence number for
	// the given object id. The raw return value decodes as a result code.
	Sync func(data any, id uint32, seq int32) int32
	// GetRegistry binds the singleton registry object. A nil return means
	// the engine could not allocate the proxy.
	GetRegistry func(data any, version uint32) *Proxy
	// CreateObject asks a server-side factory for a new object. A nil
	// return means the request was rejected; the reason arrives as a core
	// error event.
	CreateObject func(data any, factory []byte, objType []byte, version uint32, props *RawDict) *Proxy
	// Disconnect ends the session. The raw return decodes as a result code.
	Disconnect func(data any) int32
}

// CoreEvents notify about the core object.
type CoreEvents struct {
	Version uint32
	Info    func(ctx any, info *CoreInfo)
	// Done answers a Sync with the id and sequence number it was issued for.
	Done func(ctx any, id uint32, seq int32)
	// Error reports a failure on the object identified by id. res decodes
	// as a result code; message is NUL-terminated.
	Error func(ctx any, id uint32, seq int32, res int32, message []byte)
}

// RegistryMethods is the method table of the registry object.
type RegistryMethods struct {
	Version     uint32
	AddListener func(data any, h *hook.Hook, events *RegistryEvents, ctx any)
	// Bind creates a client-held proxy for the global with the given id,
	// declaring the type name and version the client compiled against.
	// A nil return means the engine could not allocate the proxy.
	Bind func(data any, id uint32, objType []byte, version uint32) *Proxy
}

// RegistryEvents announce the arrival and departure of globals.
type RegistryEvents struct {
	Version      uint32
	Global       func(ctx any, info *GlobalInfo)
	GlobalRemove func(ctx any, id uint32)
}

// NodeState is the raw processing state of a node.
type NodeState int32

const (
	NodeStateError     NodeState = -1
	NodeStateCreating  NodeState = 0
	NodeStateSuspended NodeState = 1
	NodeStateIdle      NodeState = 2
	NodeStateRunning   NodeState = 3
)

func (s NodeState) String() string {
	switch s {
	case NodeStateError:
		return "error"
	case NodeStateCreating:
		return "creating"
	case NodeStateSuspended:
		return "suspended"
	case NodeStateIdle:
		return "idle"
	case NodeStateRunning:
		return "running"
	}
	return "invalid"
}

// NodeInfo describes a node. Error is NUL-terminated and meaningful only
// when State is NodeStateError; Props is borrowed for the delivering call.
type NodeInfo struct {
	ID             uint32
	MaxInputPorts  uint32
	MaxOutputPorts uint32
	ChangeMask     uint64
	NInputPorts    uint32
	NOutputPorts   uint32
	State          NodeState
	Error          []byte
	Props          *RawDict
}

// Node info change mask bits.
const (
	NodeChangeInputPorts  uint64 = 1 << 0
	NodeChangeOutputPorts uint64 = 1 << 1
	NodeChangeState       uint64 = 1 << 2
	NodeChangeProps       uint64 = 1 << 3
	NodeChangeParams      uint64 = 1 << 4
)

// NodeMethods is the method table of a node object.
type NodeMethods struct {
	Version     uint32
	AddListener func(data any, h *hook.Hook, events *NodeEvents, ctx any)
	// EnumParams requests param events for the parameter id, starting at
	// start, delivering at most num. The raw return decodes as a result
	// code, pending when the enumeration completes asynchronously.
	EnumParams func(data any, seq int32, id uint32, start, num uint32) int32
}

// NodeEvents notify about a node.
type NodeEvents struct {
	Version uint32
	Info    func(ctx any, info *NodeInfo)
	Param   func(ctx any, seq int32, id, index, next uint32, param *RawDict)
}

// Direction of a port.
type Direction uint32

const (
	DirectionInput  Direction = 0
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	}
	return "invalid"
}

// PortInfo describes a port; Props is borrowed for the delivering call.
type PortInfo struct {
	ID         uint32
	Direction  Direction
	ChangeMask uint64
	Props      *RawDict
}

// Port info change mask bits.
const (
	PortChangeProps  uint64 = 1 << 0
	PortChangeParams uint64 = 1 << 1
)

// PortMethods is the method table of a port object.
type PortMethods struct {
	Version     uint32
	AddListener func(data any, h *hook.Hook, events *PortEvents, ctx any)
	EnumParams  func(data any, seq int32, id uint32, start, num uint32) int32
}

// PortEvents notify about a port.
type PortEvents struct {
	Version uint32
	Info    func(ctx any, info *PortInfo)
	Param   func(ctx any, seq int32, id, index, next uint32, param *RawDict)
}

// LinkState is the raw state of a link between two ports.
type LinkState int32

const (
	LinkStateError       LinkState = -2
	LinkStateUnlinked    LinkState = -1
	LinkStateInit        LinkState = 0
	LinkStateNegotiating LinkState = 1
	LinkStateAllocating  LinkState = 2
	LinkStatePaused      LinkState = 3
	LinkStateActive      LinkState = 4
)

func (s LinkState) String() string {
	switch s {
	case LinkStateError:
		return "error"
	case LinkStateUnlinked:
		return "unlinked"
	case LinkStateInit:
		return "init"
	case LinkStateNegotiating:
		return "negotiating"
	case LinkStateAllocating:
		return "allocating"
	case LinkStatePaused:
		return "paused"
	case LinkStateActive:
		return "active"
	}
	return "invalid"
}

// LinkInfo describes a link. Error is NUL-terminated and meaningful only
// when State is LinkStateError; Props is borrowed for the delivering call.
type LinkInfo struct {
	ID             uint32
	OutputNodeID   uint32
	OutputPortID   uint32
	InputNodeID    uint32
	InputPortID    uint32
	ChangeMask     uint64
	State          LinkState
	Error          []byte
	Props          *RawDict
}

// Link info change mask bits.
const (
	LinkChangeState uint64 = 1 << 0
	LinkChangeProps uint64 = 1 << 1
)

// LinkMethods is the method table of a link object.
type LinkMethods struct {
	Version     uint32
	AddListener func(data any, h *hook.Hook, events *LinkEvents, ctx any)
}

// LinkEvents notify about a link.
type LinkEvents struct {
	Version uint32
	Info    func(ctx any, info *LinkInfo)
}

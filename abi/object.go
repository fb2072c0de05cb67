package abi

// EnumFactoriesSymbol is the exported symbol every object module provides:
// an EnumFunc the host calls with an increasing index cursor to discover
// the module's factories.
const EnumFactoriesSymbol = "EnumFactories"

// MaxAlign is the maximal fundamental alignment, in bytes, of the state
// blocks handed to factory initializers. Block allocation guarantees it so
// any object layout fits without knowing the layout.
const MaxAlign = 16

// EnumFunc is the module enumeration entry point. Each call stores the
// factory at position *index (then advances the cursor) and returns 1, or
// returns 0 when the cursor is past the last factory. A negative return
// means the module violated its own enumeration contract; hosts treat it
// as unrecoverable.
type EnumFunc func(factory **Factory, index *uint32) int32

// InterfaceInfo names one interface type an object can expose.
type InterfaceInfo struct {
	Type []byte
}

// Factory describes and constructs one kind of object.
type Factory struct {
	Version uint32
	// Name is the NUL-terminated factory name hosts look up.
	Name []byte
	// Info carries static properties of the factory, may be nil.
	Info *RawDict

	// GetSize reports the state block size for an instantiation with the
	// given arguments. Zero is a valid size.
	GetSize func(f *Factory, args *RawDict) uint32
	// Init constructs an object: it fills in obj and may lay claim to
	// block, a zeroed slice of the GetSize length aligned to MaxAlign.
	// The raw return decodes as a result code; on failure the host
	// releases the block and treats construction as unrecoverable.
	Init func(f *Factory, obj *Object, block []byte, args *RawDict) int32
	// EnumInterfaceInfo enumerates the interface types instances expose,
	// with the same cursor protocol as EnumFunc.
	EnumInterfaceInfo func(f *Factory, info **InterfaceInfo, index *uint32) int32
}

// Object is the handle header a factory initializes: how to look up typed
// interfaces on the instance and how to tear it down. Data is the
// implementation's state, opaque to the host; the host owns the state
// block and the teardown ceremony.
type Object struct {
	Version uint32
	// GetInterface stores the interface object named by the
	// NUL-terminated name into *iface. The raw return decodes as a
	// result code; an unsupported name is a negative errno, not a panic.
	GetInterface func(o *Object, name []byte, iface *any) int32
	// Clear releases everything the instance owns. Called exactly once,
	// by the host, when the last reference to the handle goes away. The
	// raw return decodes as a result code.
	Clear func(o *Object) int32
	Data  any
}

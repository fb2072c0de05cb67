// Package abi declares the fixed-layout contract shared by everything that
// meets at the service boundary: the client runtime, service engines, and
// loadable object modules. It holds shape, not policy: no goroutines, no
// logging, no allocation strategy. Every other package in this module
// depends on abi; abi depends on nothing above the standard library and the
// hook arena.
//
// # Boundary strings
//
// Names that cross the boundary (interface types, factory names, dictionary
// entries, error messages) are byte slices terminated by a NUL, the
// convention of the C surface this contract mirrors. [Str] produces them
// from Go strings and [GoStr] decodes them back; a missing terminator is a
// malformed value and panics rather than being guessed at.
//
// # Self-describing objects
//
// Every object exchanged across the boundary begins with an [Interface]
// header: a NUL-terminated type name, a version, and a [Callbacks] pair of
// an opaque function table and an opaque context. [Methods] recovers the
// typed table from the header; it is the single dispatch mechanism behind
// core calls, registry binds, and listener registration:
//
//	core := abi.Methods[abi.CoreMethods](iface)
//	raw := core.Sync(iface.Cb.Data, id, seq)
//
// # Tables
//
// Method tables (CoreMethods, RegistryMethods, ...) are implemented by the
// engine side and invoked by the client runtime. Event tables (CoreEvents,
// RegistryEvents, ...) point the other way: the client fills in only the
// slots a caller subscribed to and the engine must skip nil slots when it
// dispatches. A nil slot is "not subscribed", never "call and crash".
//
// # Object modules
//
// [Factory], [Object] and [EnumFunc] describe the loadable-module half of
// the boundary: a module exports one enumeration entry point
// ([EnumFactoriesSymbol]) that yields factories; a factory sizes, and then
// initializes, an object inside a caller-provided block allocated at
// [MaxAlign] alignment.
package abi

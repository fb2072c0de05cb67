package abi

import "fmt"

// Callbacks pairs an opaque function table with the opaque context that must
// be passed as the first argument of every function in it. The split lets
// one table serve many objects and keeps implementation state out of the
// contract.
type Callbacks struct {
	Funcs any
	Data  any
}

// Interface is the self-describing header every boundary object starts
// with: what the object is (NUL-terminated type name), which revision of
// that contract it implements, and how to call it.
type Interface struct {
	Type    []byte
	Version uint32
	Cb      Callbacks
}

// TypeName returns the header's type name as a Go string, or "<invalid>"
// when the name is not valid UTF-8. Diagnostic use only; matching uses
// StrEq on the raw bytes.
func (i *Interface) TypeName() string {
	s, ok := GoStr(i.Type)
	if !ok {
		return "<invalid>"
	}
	return s
}

// Is reports whether the header names the given interface type.
func (i *Interface) Is(name string) bool {
	return StrEq(i.Type, name)
}

// Methods recovers the typed method table from an interface header. The
// header's Funcs must hold a *M; anything else means caller and object
// disagree about the contract, which is unrecoverable, so Methods panics
// with both type names. Invoke table functions with i.Cb.Data as the first
// argument.
func Methods[M any](i *Interface) *M {
	m, ok := i.Cb.Funcs.(*M)
	if !ok {
		panic(fmt.Sprintf("abi: interface %q carries table %T, caller expected %T",
			i.TypeName(), i.Cb.Funcs, (*M)(nil)))
	}
	return m
}

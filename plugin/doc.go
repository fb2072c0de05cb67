// Package plugin loads object modules and manages the lifetime of the
// objects their factories construct.
//
// A module is a named source of factories. Builtin modules are compiled
// into the process and registered with [Register]; anything else is loaded
// as a shared object through the runtime's plugin mechanism, resolving
// relative paths against [DefaultPluginDir] or WIREKIT_PLUGIN_DIR. Both
// kinds expose the same entry point, a cursor-driven factory enumeration:
//
//	mod, err := plugin.Open("support")
//	if err != nil {
//	    return err
//	}
//	defer mod.Close()
//	for f := range mod.Factories() {
//	    fmt.Println(f.Name(), f.Version())
//	}
//
// # Construction
//
// [Factory.Instantiate] follows a fixed ceremony: query the state size,
// allocate a zeroed block at maximal alignment, run the initializer. A
// failed initializer is unrecoverable; the block is released and
// Instantiate panics. A factory may legitimately report size zero and
// still get a valid aligned block.
//
// # Lifetime
//
// Handles and the interface views derived from them share one reference
// count, and each of them also counts toward the module: a module can be
// closed at any time, but it is only released after its last derived
// object is gone. Teardown of an object runs exactly once. Whoever's Close
// drops the last reference receives the teardown error; wrappers that are
// dropped without Close are torn down by a finalizer that logs the error
// and swallows it, since nobody remains to receive it.
//
//	h := factory.Instantiate(nil)
//	view, err := h.Interface(support.TypeLogger, 1)
//	if err != nil {
//	    return errors.Join(err, h.Close())
//	}
//	defer view.Close()
//	defer h.Close()
//
// [Handle.Interface] validates the object's self-describing header: the
// returned interface must spell exactly the requested type name and carry
// at least the requested version, otherwise the lookup fails with
// [ErrWrongInterface] or [ErrVersionTooOld].
package plugin

// Package bus provides an in-process engine for the wirekit client
// runtime: a directory of announced globals, server-side factories, and
// per-session core, registry and object entities that speak the raw
// boundary tables from the abi package.
//
// The engine exists so clients, examples and tests can run a full
// session without an external daemon. It delivers every event through
// the Scheduler it was built with, which a client loop satisfies, so
// callbacks land in the same dispatch context the client runs in.
//
// # Serving a session
//
// Build a Server over a loop, populate the directory, and hand Connect
// to the client as its remote:
//
//	srv, err := bus.NewServer(loop)
//	if err != nil {
//		return err
//	}
//	id := srv.AddGlobal("WireKit:Interface:Node", 1,
//		dict.New("node.name", "mic"))
//	srv.SetNodeState(id, abi.NodeStateRunning, "")
//
// Globals added while sessions are connected are announced to every
// registry listener; RemoveGlobal withdraws them and delivers Removed to
// the proxies bound to them.
//
// # Factories
//
// AddFactory registers a constructor behind a name that the core's
// CreateObject method resolves. The factory prepares the properties of
// the new global; the engine announces it and binds it for the caller:
//
//	srv.AddFactory("link-factory", "WireKit:Interface:Link", 1,
//		func(args *dict.Props) (*dict.Props, error) {
//			return args.Copy(), nil
//		})
//
// # Test switches
//
// FailNextBind makes the next registry bind return a nil proxy, which is
// how an engine reports allocation failure. BoundCount, DestroyCount and
// ListenerCount expose the bookkeeping tests assert against.
//
// A Server is confined to its loop like everything it serves. Drive it
// from setup code and from callbacks, never from other goroutines.
package bus

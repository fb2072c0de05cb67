// Package wirekit implements the client runtime of the wirekit object
// boundary: a loop-confined session API over an engine that announces,
// binds, and destroys remote objects.
//
// A client owns a MainLoop, dials an engine through a Context, and works
// with the Core object it gets back. Every event callback fires inside
// the loop's Run or Iterate, so nothing here takes locks and nothing here
// tolerates concurrent use; the loop is the serialization point.
//
// # Getting Started
//
// Create a loop and a context, connect, and subscribe:
//
//	loop, err := wirekit.NewMainLoop()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, err := wirekit.NewContext(loop, wirekit.WithRemote(engine))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	core, err := ctx.Connect(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry, err := core.GetRegistry(abi.VersionRegistryMethods)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	listener, err := registry.AddListener().
//	    Global(func(g *wirekit.GlobalObject) {
//	        fmt.Printf("global %d: %s\n", g.ID, g.Type)
//	    }).
//	    Register()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer listener.Close()
//
//	loop.Run()
//
// # Binding
//
// Binding turns an announcement into a typed object:
//
//	node, err := wirekit.BindAs[*wirekit.Node](registry, global)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Proxy().Destroy()
//
// A failed typed bind never leaks: when the global turns out to be some
// other kind, the proxy bound under the hood is destroyed before the
// error returns.
//
// # Lifetimes
//
// Info payloads borrow engine memory. A dict.Foreign view handed to a
// callback is valid only until that callback returns; call Copy on it to
// keep the contents. Listeners unregister with Close, proxies release
// with Destroy, and both are idempotent.
package wirekit

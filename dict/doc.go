// Package dict provides the two dictionary shapes used around the service
// boundary: [Foreign], a non-owning view of a table someone else keeps
// alive, and [Props], an owned writable table callers build themselves.
//
// # Viewing borrowed tables
//
// Property tables arrive attached to boundary calls and callbacks. They
// stay owned by the producer, so the view must not be kept past the call
// that delivered it:
//
//	registry.AddListener().
//	    Global(func(g *wirekit.GlobalObject) {
//	        // g.Props is valid here...
//	        if class, ok := g.Props.Get("media.class"); ok {
//	            fmt.Println(class)
//	        }
//	        // ...copy it to keep it.
//	        saved := g.Props.Copy()
//	        _ = saved
//	    })
//
// Iteration comes in two flavors. [Foreign.Raw] yields every entry as raw
// bytes in table order and always reports the exact entry count via
// [Foreign.Len]. [Foreign.All] (with [Foreign.Keys] and [Foreign.Values])
// lazily yields only entries whose key and value are valid UTF-8, skipping
// the rest; [Foreign.Get] looks up the first UTF-8 valid exact match, so
// duplicate keys resolve to the earliest entry. Both sequences restart on
// every range.
//
// # Building owned tables
//
//	props := dict.New(
//	    "node.name", "capture-1",
//	    "media.class", "Audio/Source",
//	)
//	props.Set("node.description", "First capture node")
//	core.CreateObject("adapter", wirekit.TypeNode, 3, props)
//
// [Props.Dict] materializes the owned entries into the raw table shape a
// boundary call needs, preserving insertion order.
package dict

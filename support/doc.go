// Package support provides the built-in support module and typed views
// over its interfaces.
//
// The module hosts two factories. "support.logger" produces objects
// exposing WireKit:Interface:Logger, a leveled logger backed by logrus.
// "support.cpu" produces objects exposing WireKit:Interface:CPU, which
// answers processor-count and alignment queries and declares a zero
// instance size.
//
// # Registration
//
// The module is not registered implicitly. Call Register once, then open
// it like any other module:
//
//	support.Register()
//	mod, err := plugin.Open(support.ModuleName)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer mod.Close()
//
// # Typed views
//
// The view wrappers acquire an interface from an instantiated object and
// hide the method-table plumbing:
//
//	f, _ := mod.Factory(support.LoggerName)
//	h := f.Instantiate(dict.New("log.level", "4"))
//	logger, err := support.LoggerFromHandle(h)
//	if err != nil {
//		log.Fatal(err)
//	}
//	logger.Logf(support.LevelInfo, "main.go", 42, "started with %d workers", 4)
//	logger.Close()
//	h.Close()
//
// Each view holds its own reference on the object. The object tears down
// when the last of the handle and its views closes.
package support

package plugin

import (
	"fmt"
	"iter"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
)

// Module is a loaded object module: a named source of factories. A Module
// is reference counted; every handle instantiated from it, and every
// interface view derived from such a handle, keeps it loaded. Close
// releases only the opener's reference, so a module can never be unloaded
// out from under a live object.
type Module struct {
	mu       sync.Mutex
	path     string
	enum     abi.EnumFunc
	release  func() error
	refs     int
	released bool
}

// Open loads the module at path. Builtin modules registered under exactly
// that name take priority; otherwise the path is resolved by the
// shared-object loader against the configured plugin directory
// (DefaultPluginDir, overridable with WIREKIT_PLUGIN_DIR).
func Open(path string) (*Module, error) {
	if enum, ok := lookupBuiltin(path); ok {
		logrus.WithFields(logrus.Fields{
			"function": "Open",
			"module":   path,
			"loader":   "builtin",
		}).Debug("Opened builtin module")
		return newModule(path, enum, nil), nil
	}

	config := defaultLoaderConfig()
	applyEnvironmentOverrides(config)
	return OpenWith(SharedLoader{Dir: config.PluginDir}, path)
}

// OpenWith loads the module at path using the given loader, bypassing the
// builtin registry and the default loader chain.
func OpenWith(l Loader, path string) (*Module, error) {
	enum, release, err := l.Load(path)
	if err != nil {
		return nil, newModuleError("open", path, fmt.Errorf("%w: %v", ErrModuleNotFound, err))
	}
	logrus.WithFields(logrus.Fields{
		"function": "OpenWith",
		"module":   path,
		"loader":   fmt.Sprintf("%T", l),
	}).Debug("Opened module")
	return newModule(path, enum, release), nil
}

func newModule(path string, enum abi.EnumFunc, release func() error) *Module {
	return &Module{
		path:    path,
		enum:    enum,
		release: release,
		refs:    1,
	}
}

// Path returns the path the module was opened with.
func (m *Module) Path() string {
	return m.path
}

// Refs returns the current strong reference count: the opener's reference
// while not closed, plus one per live handle or view.
func (m *Module) Refs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs
}

// Factories enumerates the module's factories lazily: each step calls the
// module's entry point with an increasing index until it reports
// exhaustion. Every range restarts the enumeration. A negative return from
// the entry point means the module broke its own enumeration contract and
// panics.
func (m *Module) Factories() iter.Seq[*Factory] {
	return func(yield func(*Factory) bool) {
		var index uint32
		for {
			var raw *abi.Factory
			res := m.enum(&raw, &index)
			if res == 0 {
				return
			}
			if res < 0 {
				panic(fmt.Sprintf("plugin: module %q factory enumeration failed with %d", m.path, res))
			}
			if raw == nil {
				panic(fmt.Sprintf("plugin: module %q enumeration reported a factory but stored none", m.path))
			}
			if !yield(&Factory{mod: m, raw: raw}) {
				return
			}
		}
	}
}

// Factory returns the first factory whose name is exactly name, or
// ErrFactoryNotFound.
func (m *Module) Factory(name string) (*Factory, error) {
	for f := range m.Factories() {
		if abi.StrEq(f.raw.Name, name) {
			return f, nil
		}
	}
	return nil, newModuleError("factory", m.path, fmt.Errorf("%w: %q", ErrFactoryNotFound, name))
}

// Close releases the opener's reference. The module is actually released
// only when no handle or view derived from it remains; until then Close
// just drops this reference and returns nil. Close is idempotent.
func (m *Module) Close() error {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return nil
	}
	m.released = true
	m.mu.Unlock()
	return m.unref()
}

// ref takes a strong reference on behalf of a derived handle or view.
func (m *Module) ref() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refs == 0 {
		panic(fmt.Sprintf("plugin: module %q revived after release", m.path))
	}
	m.refs++
}

// unref drops one strong reference and performs the release when the last
// one goes.
func (m *Module) unref() error {
	m.mu.Lock()
	m.refs--
	last := m.refs == 0
	release := m.release
	m.mu.Unlock()

	if !last {
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"function": "unref",
		"module":   m.path,
	}).Debug("Releasing module, last reference gone")
	if release != nil {
		return release()
	}
	return nil
}

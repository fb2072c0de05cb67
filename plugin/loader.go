package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	goplugin "plugin"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/abi"
)

// DefaultPluginDir is where relative module paths are resolved when no
// override is configured.
const DefaultPluginDir = "/usr/lib/wirekit-0.2"

// Loader turns a module path into its factory enumeration entry point.
// The returned release function, when non-nil, is called once the module's
// last reference is gone.
type Loader interface {
	Load(path string) (abi.EnumFunc, func() error, error)
}

// loaderConfig holds the settings the shared-object loader resolves paths
// with.
type loaderConfig struct {
	PluginDir string
}

// defaultLoaderConfig initializes the default loader configuration.
func defaultLoaderConfig() *loaderConfig {
	return &loaderConfig{
		PluginDir: DefaultPluginDir,
	}
}

// applyEnvironmentOverrides updates configuration based on environment
// variables. It checks WIREKIT_* variables and overrides defaults if valid
// values are found.
func applyEnvironmentOverrides(config *loaderConfig) {
	parsePluginDirSetting(config)
}

// parsePluginDirSetting updates the PluginDir config from the
// WIREKIT_PLUGIN_DIR environment variable. Relative values are rejected
// with a warning and the default is kept: a relative search root would
// silently depend on the process working directory.
func parsePluginDirSetting(config *loaderConfig) {
	if dir := os.Getenv("WIREKIT_PLUGIN_DIR"); dir != "" {
		if !filepath.IsAbs(dir) {
			logrus.WithFields(logrus.Fields{
				"function":    "parsePluginDirSetting",
				"env_var":     "WIREKIT_PLUGIN_DIR",
				"value":       dir,
				"using_value": config.PluginDir,
			}).Warn("WIREKIT_PLUGIN_DIR is not absolute, using default")
			return
		}
		config.PluginDir = dir
	}
}

// SharedLoader loads modules from shared objects with the runtime's plugin
// mechanism. Relative paths resolve against Dir.
type SharedLoader struct {
	Dir string
}

// Load opens the shared object and resolves its enumeration entry point.
// Shared objects stay mapped for the life of the process, so the release
// function is nil.
func (l SharedLoader) Load(path string) (abi.EnumFunc, func() error, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.Dir, full)
	}
	p, err := goplugin.Open(full)
	if err != nil {
		return nil, nil, fmt.Errorf("open shared object: %w", err)
	}
	sym, err := p.Lookup(abi.EnumFactoriesSymbol)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup %s: %w", abi.EnumFactoriesSymbol, err)
	}
	switch fn := sym.(type) {
	case func(**abi.Factory, *uint32) int32:
		return abi.EnumFunc(fn), nil, nil
	case *abi.EnumFunc:
		return *fn, nil, nil
	default:
		return nil, nil, fmt.Errorf("symbol %s has type %T, want %T",
			abi.EnumFactoriesSymbol, sym, abi.EnumFunc(nil))
	}
}

// builtin modules are compiled into the process and registered by name.
// They take priority over shared objects so tests and embedders never
// depend on the filesystem.
var (
	builtinMu sync.RWMutex
	builtins  = make(map[string]abi.EnumFunc)
)

// Register makes an in-process module available under the given name.
// It panics if the name is already taken or the entry point is nil;
// registration happens at program setup where a conflict is a bug.
func Register(name string, enum abi.EnumFunc) {
	if enum == nil {
		panic("plugin: Register with nil entry point")
	}
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if _, dup := builtins[name]; dup {
		panic("plugin: Register called twice for module " + name)
	}
	builtins[name] = enum

	logrus.WithFields(logrus.Fields{
		"function": "Register",
		"module":   name,
	}).Debug("Registered builtin module")
}

// Registered reports whether a builtin module exists under the name.
func Registered(name string) bool {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	_, ok := builtins[name]
	return ok
}

func lookupBuiltin(name string) (abi.EnumFunc, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	enum, ok := builtins[name]
	return enum, ok
}

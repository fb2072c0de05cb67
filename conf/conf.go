// Package conf loads wirekit.conf and applies environment overrides.
//
// Configuration resolves in three layers. Built-in defaults come first.
// A TOML file overrides them: an explicit path if the caller gives one,
// otherwise $WIREKIT_CONFIG, otherwise /etc/wirekit/wirekit.conf when it
// exists. Environment variables override the file last.
//
//	cfg, err := conf.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	cfg.Apply()
//
// A minimal wirekit.conf:
//
//	plugin-dir = "/opt/wirekit/modules"
//	log-level = "debug"
//
//	[properties]
//	application.name = "capture"
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/wirekit/plugin"
)

// DefaultPath is where Load looks when neither an explicit path nor
// $WIREKIT_CONFIG names a file.
const DefaultPath = "/etc/wirekit/wirekit.conf"

// Config is the file and environment configuration of a wirekit process.
type Config struct {
	// PluginDir is the search root for relative module paths.
	PluginDir string `toml:"plugin-dir"`

	// LogLevel names a logrus level for Apply.
	LogLevel string `toml:"log-level"`

	// Properties are extra key/value pairs merged into context properties.
	Properties map[string]string `toml:"properties"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginDir: plugin.DefaultPluginDir,
		LogLevel:  "info",
	}
}

// Load resolves the configuration. When path is empty the file is
// discovered, and a missing default file is not an error. The returned
// Config is usable even when err is non-nil.
func Load(path string) (Config, error) {
	c := Default()

	file, required := resolvePath(path)
	if file != "" {
		if err := loadFile(&c, file, required); err != nil {
			return Default(), err
		}
	}

	applyEnvOverrides(&c)
	return c, nil
}

// resolvePath picks the file to read. The bool reports whether the file
// must exist: explicit paths and $WIREKIT_CONFIG name user intent, the
// system default is optional.
func resolvePath(path string) (string, bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("WIREKIT_CONFIG"); env != "" {
		return env, true
	}
	return DefaultPath, false
}

func loadFile(c *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse error in %s: %w", path, err)
	}
	return nil
}

// Apply installs the configured log level on the standard logrus logger.
func (c Config) Apply() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Apply",
			"value":    c.LogLevel,
		}).Warn("Unknown log level in configuration, keeping current")
		return
	}
	logrus.SetLevel(level)
}

// Property returns a configured property value.
func (c Config) Property(key string) (string, bool) {
	v, ok := c.Properties[key]
	return v, ok
}

// applyEnvOverrides updates configuration based on environment variables.
// It checks WIREKIT_* variables and overrides file values if valid values
// are found.
func applyEnvOverrides(c *Config) {
	parsePluginDirSetting(c)
	parseLogLevelSetting(c)
}

// parsePluginDirSetting updates PluginDir from the WIREKIT_PLUGIN_DIR
// environment variable. Relative values are rejected with a warning and
// the configured value is kept: a relative search root would silently
// depend on the process working directory.
func parsePluginDirSetting(c *Config) {
	if dir := os.Getenv("WIREKIT_PLUGIN_DIR"); dir != "" {
		if !filepath.IsAbs(dir) {
			logrus.WithFields(logrus.Fields{
				"function":    "parsePluginDirSetting",
				"env_var":     "WIREKIT_PLUGIN_DIR",
				"value":       dir,
				"using_value": c.PluginDir,
			}).Warn("WIREKIT_PLUGIN_DIR is not absolute, ignoring")
			return
		}
		c.PluginDir = dir
	}
}

// parseLogLevelSetting updates LogLevel from the WIREKIT_LOG_LEVEL
// environment variable. Both logrus level names and the numeric support
// levels 0..5 are accepted; anything else is rejected with a warning.
func parseLogLevelSetting(c *Config) {
	value := os.Getenv("WIREKIT_LOG_LEVEL")
	if value == "" {
		return
	}
	if n, err := strconv.ParseUint(value, 10, 32); err == nil {
		if name, ok := numericLevelName(uint32(n)); ok {
			c.LogLevel = name
			return
		}
	} else if _, err := logrus.ParseLevel(value); err == nil {
		c.LogLevel = value
		return
	}
	logrus.WithFields(logrus.Fields{
		"function":    "parseLogLevelSetting",
		"env_var":     "WIREKIT_LOG_LEVEL",
		"value":       value,
		"using_value": c.LogLevel,
	}).Warn("WIREKIT_LOG_LEVEL is not a known level, ignoring")
}

// numericLevelName maps the numeric levels 0..5 onto logrus level names.
// Zero silences everything logrus can silence.
func numericLevelName(n uint32) (string, bool) {
	switch n {
	case 0:
		return "panic", true
	case 1:
		return "error", true
	case 2:
		return "warning", true
	case 3:
		return "info", true
	case 4:
		return "debug", true
	case 5:
		return "trace", true
	}
	return "", false
}

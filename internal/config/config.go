// Package config loads keychord settings from flags, environment and a
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/keychord/internal/logging"
)

// Errors returned by Validate.
var (
	ErrNoBindings      = errors.New("no binding files configured")
	ErrEmptyKeybindSet = errors.New("keybind_set must not be empty")
)

// Config is the application configuration.
type Config struct {
	// Platform is auto, mac, windows, linux or another host name.
	Platform   string `mapstructure:"platform"`
	KeybindSet string `mapstructure:"keybind_set"`

	// Bindings are the default declaration files, loaded in order.
	Bindings []string `mapstructure:"bindings"`
	// UserBindings is an optional file of user overrides.
	UserBindings string `mapstructure:"user_bindings"`
	// Actions are Lua scripts registering actions.
	Actions []string `mapstructure:"actions"`

	// Strict aborts on the first malformed binding.
	Strict bool `mapstructure:"strict"`
	Watch  bool `mapstructure:"watch"`

	Log LogConfig `mapstructure:"log"`

	// File is the configuration file that was read, if any.
	File string `mapstructure:"-"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the default settings keyed by configuration path.
func Defaults() map[string]any {
	return map[string]any{
		"platform":      "auto",
		"keybind_set":   "devToolsDefault",
		"bindings":      []string{},
		"user_bindings": "",
		"actions":       []string{},
		"strict":        true,
		"watch":         false,
		"log.level":     "info",
		"log.format":    logging.FormatConsole,
	}
}

// flagKeys maps command-line flag names to configuration paths.
var flagKeys = map[string]string{
	"platform":      "platform",
	"keybind-set":   "keybind_set",
	"bindings":      "bindings",
	"user-bindings": "user_bindings",
	"actions":       "actions",
	"strict":        "strict",
	"watch":         "watch",
	"log-level":     "log.level",
	"log-format":    "log.format",
}

// configDir returns the per-user configuration directory.
func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(dir, "keychord"), nil
}

// Load reads the configuration. Precedence from lowest to highest is
// defaults, the config file, KEYCHORD_* environment variables and flags
// of cmd that were set. An explicit file path must exist. Without one,
// keychord.{yaml,toml,json} is looked up in the user config directory
// and the working directory, and a missing file is not an error.
func Load(cmd *cobra.Command, file string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("keychord")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("keychord")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cmd != nil {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}

	c.File = v.ConfigFileUsed()
	c.resolvePaths()
	return c, nil
}

// resolvePaths makes relative file paths relative to the config file.
func (c *Config) resolvePaths() {
	if c.File == "" {
		return
	}
	base := filepath.Dir(c.File)
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	for i, p := range c.Bindings {
		c.Bindings[i] = abs(p)
	}
	for i, p := range c.Actions {
		c.Actions[i] = abs(p)
	}
	c.UserBindings = abs(c.UserBindings)
}

// Files returns every declaration and script file the configuration
// refers to.
func (c Config) Files() []string {
	files := make([]string, 0, len(c.Bindings)+len(c.Actions)+1)
	files = append(files, c.Bindings...)
	if c.UserBindings != "" {
		files = append(files, c.UserBindings)
	}
	return append(files, c.Actions...)
}

// Logging returns the logger configuration.
func (c Config) Logging() (logging.Config, error) {
	return logging.ParseConfig(c.Log.Level, c.Log.Format)
}

// Validate checks the settings.
func (c Config) Validate() error {
	var errs []error
	if len(c.Bindings) == 0 {
		errs = append(errs, ErrNoBindings)
	}
	if strings.TrimSpace(c.KeybindSet) == "" {
		errs = append(errs, ErrEmptyKeybindSet)
	}
	if _, err := c.Logging(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Package config loads the linkdemo configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. LINKDEMO_WATCH_DEBOUNCE.
const EnvPrefix = "LINKDEMO"

// Config holds all configuration options for linkdemo.
type Config struct {
	Page     string      `mapstructure:"page"`
	Styles   []string    `mapstructure:"styles"`
	Model    string      `mapstructure:"model"`
	Manifest string      `mapstructure:"manifest"`
	Watch    WatchConfig `mapstructure:"watch"`
	Log      LogConfig   `mapstructure:"log"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type LogConfig struct {
	// Verbosity is the logr V level printed, 0 for errors and summaries only.
	Verbosity int `mapstructure:"verbosity"`
}

func Defaults() Config {
	return Config{
		Page:     "index.html",
		Model:    "model.yaml",
		Manifest: "bindings.yaml",
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}

// Load reads path, or linkdemo.yaml in the working directory when path is
// empty, applies LINKDEMO_ environment overrides and resolves the input
// paths relative to the config file.
func Load(path string) (Config, error) {
	v := viper.New()
	defaults := Defaults()
	v.SetDefault("page", defaults.Page)
	v.SetDefault("styles", defaults.Styles)
	v.SetDefault("model", defaults.Model)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("log.verbosity", defaults.Log.Verbosity)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("linkdemo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.resolve(filepath.Dir(used))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	rel := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	c.Page = rel(c.Page)
	c.Model = rel(c.Model)
	c.Manifest = rel(c.Manifest)
	for i, s := range c.Styles {
		c.Styles[i] = rel(s)
	}
}

func (c Config) Validate() error {
	if c.Page == "" {
		return fmt.Errorf("page is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}
	return nil
}

// Inputs lists every file the demo reads.
func (c Config) Inputs() []string {
	inputs := []string{c.Page, c.Model}
	if c.Manifest != "" {
		inputs = append(inputs, c.Manifest)
	}
	return append(inputs, c.Styles...)
}

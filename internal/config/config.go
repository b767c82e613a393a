// Package config provides configuration management for toon.
//
// Configuration is loaded from three sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (TOON_ prefix)
//  3. Config file (.toon.yaml)
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/toon/pkg/toon"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the global configuration for toon.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// Indent is the number of spaces per nesting level.
	Indent int `mapstructure:"indent" json:"indent"`

	// Delimiter is a literal character or one of the names comma, tab, pipe.
	Delimiter string `mapstructure:"delimiter" json:"delimiter"`

	// LengthMarker is an optional character placed before array lengths.
	LengthMarker string `mapstructure:"length-marker" json:"lengthMarker"`

	// Profile selects a named encoding profile from the config file.
	Profile string `mapstructure:"profile" json:"profile"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:  LogLevelInfo,
		LogFormat: LogFormatText,
		NoColor:   false,
		Quiet:     false,
		Indent:    toon.DefaultIndent,
		Delimiter: toon.DefaultDelimiter,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	if err := c.EncodeOptions().Validate(); err != nil {
		return fmt.Errorf("invalid encoding settings: %w", err)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// EncodeOptions converts the encoding settings into encoder options.
func (c *Config) EncodeOptions() toon.Options {
	o := toon.DefaultOptions()
	o.Indent = c.Indent
	o.Delimiter = ParseDelimiter(c.Delimiter)
	o.LengthMarker = c.LengthMarker

	return o
}

// ParseDelimiter resolves delimiter names to their character. Any other
// value is returned unchanged.
func ParseDelimiter(s string) string {
	switch strings.ToLower(s) {
	case "comma":
		return toon.DelimiterComma
	case "tab", `\t`:
		return toon.DelimiterTab
	case "pipe":
		return toon.DelimiterPipe
	default:
		return s
	}
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	changed, err := bindFlags(v, cmd)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if cfg.Profile != "" {
		if err := applyProfile(&cfg, changed); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyProfile overlays the selected profile from the config file onto cfg.
// Flags and environment variables set explicitly still win.
func applyProfile(cfg *Config, changed map[string]bool) error {
	if cfg.ConfigFile == "" {
		return fmt.Errorf("profile %q requested but no config file was found", cfg.Profile)
	}

	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("reading config file %q: %w", cfg.ConfigFile, err)
	}

	profiles, err := ParseProfiles(data)
	if err != nil {
		return err
	}

	p, ok := profiles[cfg.Profile]
	if !ok {
		return fmt.Errorf("unknown profile %q (available: %s)", cfg.Profile, strings.Join(profileNames(profiles), ", "))
	}

	if p.Indent != nil && !explicit(changed, "indent") {
		cfg.Indent = *p.Indent
	}

	if p.Delimiter != "" && !explicit(changed, "delimiter") {
		cfg.Delimiter = p.Delimiter
	}

	if p.LengthMarker != "" && !explicit(changed, "length-marker") {
		cfg.LengthMarker = p.LengthMarker
	}

	return nil
}

// explicit reports whether key was set by a flag or environment variable.
func explicit(changed map[string]bool, key string) bool {
	if _, ok := os.LookupEnv(envKey(key)); ok {
		return true
	}

	return changed[key]
}

func envKey(key string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

const envPrefix = "TOON"

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log-level", LogLevelInfo)
	v.SetDefault("log-format", LogFormatText)
	v.SetDefault("no-color", false)
	v.SetDefault("quiet", false)
	v.SetDefault("indent", toon.DefaultIndent)
	v.SetDefault("delimiter", toon.DefaultDelimiter)
	v.SetDefault("length-marker", "")
	v.SetDefault("profile", "")
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	// Auto-discovery mode.
	v.SetConfigName(".toon")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "toon"))
	}

	if err := v.ReadInConfig(); err != nil {
		// No config file found → perfectly fine in auto-discovery.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}

		// Found a file but it was malformed.
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
// It returns the names of the encoding flags the user set explicitly.
func bindFlags(v *viper.Viper, cmd *cobra.Command) (map[string]bool, error) {
	changed := make(map[string]bool)

	if cmd == nil {
		return changed, nil
	}

	// Bind the current command's own flags.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	markChanged(changed, cmd.Flags())

	// Walk up to root and bind all persistent flags at each level.
	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return nil, fmt.Errorf("binding persistent flags: %w", err)
		}

		markChanged(changed, c.PersistentFlags())
	}

	return changed, nil
}

var encodingFlags = []string{"indent", "delimiter", "length-marker"}

func markChanged(changed map[string]bool, fs *pflag.FlagSet) {
	for _, name := range encodingFlags {
		if f := fs.Lookup(name); f != nil && f.Changed {
			changed[name] = true
		}
	}
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd creates a cobra.Command with the same persistent flags as the
// real root command so that Load can bind them during tests.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")
	pf.Int("indent", 2, "")
	pf.String("delimiter", ",", "")
	pf.String("length-marker", "", "")
	pf.String("profile", "", "")

	return cmd
}

// writeTempConfig writes a YAML string to a temporary file and returns the path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, 2, cfg.Indent)
	assert.Equal(t, ",", cfg.Delimiter)
	assert.Empty(t, cfg.LengthMarker)
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate_ValidValues(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		cfg := Default()
		cfg.LogLevel = lvl
		assert.NoError(t, cfg.Validate(), "level=%s", lvl)
	}

	for _, fmt := range []string{"text", "json"} {
		cfg := Default()
		cfg.LogFormat = fmt
		assert.NoError(t, cfg.Validate(), "format=%s", fmt)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log format")
}

func TestValidate_EncodingSettings(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"named delimiter", func(c *Config) { c.Delimiter = "pipe" }, ""},
		{"literal tab", func(c *Config) { c.Delimiter = "\t" }, ""},
		{"zero indent", func(c *Config) { c.Indent = 0 }, ""},
		{"length marker", func(c *Config) { c.LengthMarker = "#" }, ""},
		{"negative indent", func(c *Config) { c.Indent = -1 }, "invalid encoding settings"},
		{"long delimiter", func(c *Config) { c.Delimiter = "::" }, "invalid encoding settings"},
		{"empty delimiter", func(c *Config) { c.Delimiter = "" }, "invalid encoding settings"},
		{"long marker", func(c *Config) { c.LengthMarker = "##" }, "invalid encoding settings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// EncodeOptions / ParseDelimiter
// ---------------------------------------------------------------------------

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, ",", ParseDelimiter("comma"))
	assert.Equal(t, "\t", ParseDelimiter("TAB"))
	assert.Equal(t, "|", ParseDelimiter("pipe"))
	assert.Equal(t, ";", ParseDelimiter(";"))
}

func TestEncodeOptions(t *testing.T) {
	cfg := Default()
	cfg.Indent = 4
	cfg.Delimiter = "tab"
	cfg.LengthMarker = "#"

	opts := cfg.EncodeOptions()
	assert.Equal(t, 4, opts.Indent)
	assert.Equal(t, "\t", opts.Delimiter)
	assert.Equal(t, "#", opts.LengthMarker)
}

// ---------------------------------------------------------------------------
// EffectiveLogLevel
// ---------------------------------------------------------------------------

func TestEffectiveLogLevel_Normal(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestEffectiveLogLevel_QuietOverride(t *testing.T) {
	cfg := &Config{LogLevel: "debug", Quiet: true}
	assert.Equal(t, "error", cfg.EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load: defaults only
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
}

// ---------------------------------------------------------------------------
// Load: environment variables
// ---------------------------------------------------------------------------

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("TOON_LOG_LEVEL", "debug")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvBooleans(t *testing.T) {
	t.Setenv("TOON_NO_COLOR", "true")
	t.Setenv("TOON_QUIET", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
}

// ---------------------------------------------------------------------------
// Load: config file
// ---------------------------------------------------------------------------

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempConfig(t, "log-level: warn\nlog-format: json\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, "/tmp/nonexistent-toon-cfg-12345.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	p := writeTempConfig(t, ": invalid yaml :")

	_, err := Load(nil, p)
	require.Error(t, err)
}

func TestLoad_MissingAutoDiscoverFile(t *testing.T) {
	// When no explicit file is given and auto-discover finds nothing, Load
	// should succeed with defaults.
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
}

// ---------------------------------------------------------------------------
// Load: flag precedence
// ---------------------------------------------------------------------------

func TestLoad_FlagOverridesDefault(t *testing.T) {
	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("TOON_LOG_LEVEL", "debug")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("TOON_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagOverridesAll(t *testing.T) {
	t.Setenv("TOON_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\n")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

// ---------------------------------------------------------------------------
// Load: validation on loaded values
// ---------------------------------------------------------------------------

func TestLoad_InvalidLogLevelFromEnv(t *testing.T) {
	t.Setenv("TOON_LOG_LEVEL", "verbose")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_InvalidLogFormatFromFile(t *testing.T) {
	p := writeTempConfig(t, "log-format: xml\n")

	_, err := Load(nil, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

// ---------------------------------------------------------------------------
// Load: encoding settings and profiles
// ---------------------------------------------------------------------------

func TestLoad_EncodingFromEnv(t *testing.T) {
	t.Setenv("TOON_INDENT", "4")
	t.Setenv("TOON_DELIMITER", "pipe")
	t.Setenv("TOON_LENGTH_MARKER", "#")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, "|", cfg.EncodeOptions().Delimiter)
	assert.Equal(t, "#", cfg.LengthMarker)
}

func TestLoad_EncodingFromFile(t *testing.T) {
	p := writeTempConfig(t, "indent: 0\ndelimiter: tab\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Indent)
	assert.Equal(t, "tab", cfg.Delimiter)
}

func TestLoad_InvalidIndentFromFlag(t *testing.T) {
	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("indent", "-2"))

	_, err := Load(cmd, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid encoding settings")
}

const profileConfig = `
profiles:
  compact:
    indent: 1
    delimiter: tab
    lengthMarker: "#"
  wide:
    indent: 4
`

func TestLoad_Profile(t *testing.T) {
	p := writeTempConfig(t, "profile: compact\n"+profileConfig)

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Indent)
	assert.Equal(t, "tab", cfg.Delimiter)
	assert.Equal(t, "#", cfg.LengthMarker)
}

func TestLoad_ProfileKeepsUnsetFields(t *testing.T) {
	p := writeTempConfig(t, "delimiter: pipe\n"+profileConfig)

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("profile", "wide"))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Indent)
	assert.Equal(t, "pipe", cfg.Delimiter)
}

func TestLoad_FlagOverridesProfile(t *testing.T) {
	p := writeTempConfig(t, profileConfig)

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("profile", "compact"))
	require.NoError(t, cmd.PersistentFlags().Set("indent", "3"))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Indent)
	assert.Equal(t, "tab", cfg.Delimiter)
}

func TestLoad_EnvOverridesProfile(t *testing.T) {
	t.Setenv("TOON_DELIMITER", "|")
	p := writeTempConfig(t, "profile: compact\n"+profileConfig)

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "|", cfg.Delimiter)
	assert.Equal(t, 1, cfg.Indent)
}

func TestLoad_UnknownProfile(t *testing.T) {
	p := writeTempConfig(t, "profile: missing\n"+profileConfig)

	_, err := Load(nil, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown profile "missing" (available: compact, wide)`)
}

func TestLoad_ProfileWithoutConfigFile(t *testing.T) {
	t.Setenv("TOON_PROFILE", "compact")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no config file")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	ctx := NewContext(context.Background(), cfg)
	got := FromContext(ctx)
	assert.Equal(t, cfg, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, Default(), got)
}

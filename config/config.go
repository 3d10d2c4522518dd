package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// EnvPrefix prefixes every environment variable the harness reads, e.g.
	// EXPLORER_HARNESS_EXPLORER_BINARY.
	EnvPrefix = "EXPLORER_HARNESS"
)

// NOTE: the default configuration options were used to manually generate the
// config.toml. Please reflect any changes made here in the
// defaultConfigTemplate constant in config/toml.go
var (
	DefaultHarnessDir = ".explorer-harness"

	defaultConfigFileName = "config.toml"

	// DefaultExpectedSchemaPath is where the checked-in explorer schema lives,
	// relative to the repository root.
	DefaultExpectedSchemaPath = filepath.Join("resources", "explorer", "graphql", "schema.graphql")
)

// Config defines the top level configuration for the explorer harness.
type Config struct {
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `toml:"-"`

	// Output level for logging, including package level options
	LogLevel string `toml:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `toml:"log-format"`

	Explorer        *ExplorerConfig        `toml:"explorer"`
	Schema          *SchemaConfig          `toml:"schema"`
	Instrumentation *InstrumentationConfig `toml:"instrumentation"`
}

// DefaultConfig returns a default configuration for the harness.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       LogFormatPlain,
		Explorer:        DefaultExplorerConfig(),
		Schema:          DefaultSchemaConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing.
func TestConfig() *Config {
	return &Config{
		LogLevel:        "debug",
		LogFormat:       LogFormatPlain,
		Explorer:        TestExplorerConfig(),
		Schema:          DefaultSchemaConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.RootDir = root
	return cfg
}

// ConfigFile returns the path of config.toml under the root directory.
func (cfg *Config) ConfigFile() string {
	return rootify(defaultConfigFileName, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	switch strings.ToLower(cfg.LogFormat) {
	case LogFormatPlain, "text", LogFormatJSON:
	default:
		return fmt.Errorf("unsupported log format: %q", cfg.LogFormat)
	}
	if cfg.Explorer == nil {
		return errors.New("missing [explorer] section")
	}
	if err := cfg.Explorer.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [explorer] section: %w", err)
	}
	if cfg.Schema == nil {
		return errors.New("missing [schema] section")
	}
	if cfg.Instrumentation == nil {
		return errors.New("missing [instrumentation] section")
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// ExplorerConfig

// ExplorerConfig defines how an explorer process is launched and queried.
type ExplorerConfig struct {
	// Path to (or name on $PATH of) the explorer binary.
	Binary string `toml:"binary"`

	// Host the explorer binds to. The port is always picked at launch time.
	ListenHost string `toml:"listen-host"`

	// Pause between two readiness probes.
	BootstrapInterval time.Duration `toml:"bootstrap-interval"`

	// Number of readiness probes before giving up.
	BootstrapAttempts int `toml:"bootstrap-attempts"`

	// Timeout applied to every query round trip. 0 means no timeout.
	QueryTimeout time.Duration `toml:"query-timeout"`

	// Directory receiving explorer.log when a test fails. Empty disables it.
	LogsDir string `toml:"logs-dir"`

	// Print every query and response.
	Verbose bool `toml:"verbose"`
}

// DefaultExplorerConfig returns a default configuration for the explorer.
func DefaultExplorerConfig() *ExplorerConfig {
	return &ExplorerConfig{
		Binary:            "explorer",
		ListenHost:        "127.0.0.1",
		BootstrapInterval: time.Second,
		BootstrapAttempts: 10,
		QueryTimeout:      30 * time.Second,
		Verbose:           true,
	}
}

// TestExplorerConfig returns a configuration for testing the explorer.
func TestExplorerConfig() *ExplorerConfig {
	cfg := DefaultExplorerConfig()
	cfg.BootstrapInterval = 50 * time.Millisecond
	cfg.BootstrapAttempts = 20
	cfg.QueryTimeout = 5 * time.Second
	cfg.Verbose = false
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ExplorerConfig) ValidateBasic() error {
	if cfg.Binary == "" {
		return errors.New("binary can't be empty")
	}
	if cfg.ListenHost == "" {
		return errors.New("listen-host can't be empty")
	}
	if cfg.BootstrapInterval <= 0 {
		return errors.New("bootstrap-interval must be positive")
	}
	if cfg.BootstrapAttempts <= 0 {
		return errors.New("bootstrap-attempts must be positive")
	}
	if cfg.QueryTimeout < 0 {
		return errors.New("query-timeout can't be negative")
	}
	return nil
}

// BootstrapBudget is the longest a readiness wait may take.
func (cfg *ExplorerConfig) BootstrapBudget() time.Duration {
	return cfg.BootstrapInterval * time.Duration(cfg.BootstrapAttempts)
}

//-----------------------------------------------------------------------------
// SchemaConfig

// SchemaConfig points at the checked-in explorer schema.
type SchemaConfig struct {
	Expected string `toml:"expected"`
}

// DefaultSchemaConfig returns the default schema configuration.
func DefaultSchemaConfig() *SchemaConfig {
	return &SchemaConfig{Expected: DefaultExpectedSchemaPath}
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	// When true, Prometheus metrics are served under /metrics on
	// PrometheusListenAddr.
	Prometheus bool `toml:"prometheus"`

	// Address to listen for Prometheus collector(s) connections.
	PrometheusListenAddr string `toml:"prometheus-listen-addr"`

	// Maximum number of simultaneous connections.
	// If you want to accept a larger number than the default, make sure
	// you increase your OS limits.
	// 0 - unlimited.
	MaxOpenConnections int `toml:"max-open-connections"`

	// Origins allowed to fetch metrics from a browser. "*" allows any.
	CORSAllowedOrigins []string `toml:"cors-allowed-origins"`

	// Instrumentation namespace.
	Namespace string `toml:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:           false,
		PrometheusListenAddr: ":26660",
		MaxOpenConnections:   3,
		CORSAllowedOrigins:   []string{},
		Namespace:            "explorer_harness",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.MaxOpenConnections < 0 {
		return errors.New("max-open-connections can't be negative")
	}
	if cfg.Prometheus && cfg.PrometheusListenAddr == "" {
		return errors.New("prometheus-listen-addr can't be empty when prometheus is on")
	}
	return nil
}

// IsPrometheusEnabled returns true if the server should expose metrics.
func (cfg *InstrumentationConfig) IsPrometheusEnabled() bool {
	return cfg.Prometheus && cfg.PrometheusListenAddr != ""
}

// IsCorsEnabled returns true if cross-origin resource sharing is enabled.
func (cfg *InstrumentationConfig) IsCorsEnabled() bool {
	return len(cfg.CORSAllowedOrigins) != 0
}

//-----------------------------------------------------------------------------
// Loading

// LoadFile decodes the TOML file at path on top of DefaultConfig. Unknown keys
// are rejected so that typos don't silently fall back to defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// NewViper returns a viper instance reading EXPLORER_HARNESS_* environment
// variables, e.g. EXPLORER_HARNESS_EXPLORER_LOGS_DIR for explorer.logs-dir.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Override copies every key explicitly set in v (flag, environment or
// viper.Set) onto cfg. Keys left unset keep the value cfg already holds.
func (cfg *Config) Override(v *viper.Viper) {
	if v.IsSet("log-level") {
		cfg.LogLevel = v.GetString("log-level")
	}
	if v.IsSet("log-format") {
		cfg.LogFormat = v.GetString("log-format")
	}
	if cfg.Explorer == nil {
		cfg.Explorer = DefaultExplorerConfig()
	}
	if v.IsSet("explorer.binary") {
		cfg.Explorer.Binary = v.GetString("explorer.binary")
	}
	if v.IsSet("explorer.listen-host") {
		cfg.Explorer.ListenHost = v.GetString("explorer.listen-host")
	}
	if v.IsSet("explorer.bootstrap-interval") {
		cfg.Explorer.BootstrapInterval = v.GetDuration("explorer.bootstrap-interval")
	}
	if v.IsSet("explorer.bootstrap-attempts") {
		cfg.Explorer.BootstrapAttempts = v.GetInt("explorer.bootstrap-attempts")
	}
	if v.IsSet("explorer.query-timeout") {
		cfg.Explorer.QueryTimeout = v.GetDuration("explorer.query-timeout")
	}
	if v.IsSet("explorer.logs-dir") {
		cfg.Explorer.LogsDir = v.GetString("explorer.logs-dir")
	}
	if v.IsSet("explorer.verbose") {
		cfg.Explorer.Verbose = v.GetBool("explorer.verbose")
	}
	if cfg.Schema == nil {
		cfg.Schema = DefaultSchemaConfig()
	}
	if v.IsSet("schema.expected") {
		cfg.Schema.Expected = v.GetString("schema.expected")
	}
	if cfg.Instrumentation == nil {
		cfg.Instrumentation = DefaultInstrumentationConfig()
	}
	if v.IsSet("instrumentation.prometheus") {
		cfg.Instrumentation.Prometheus = v.GetBool("instrumentation.prometheus")
	}
	if v.IsSet("instrumentation.prometheus-listen-addr") {
		cfg.Instrumentation.PrometheusListenAddr = v.GetString("instrumentation.prometheus-listen-addr")
	}
	if v.IsSet("instrumentation.max-open-connections") {
		cfg.Instrumentation.MaxOpenConnections = v.GetInt("instrumentation.max-open-connections")
	}
	if v.IsSet("instrumentation.cors-allowed-origins") {
		cfg.Instrumentation.CORSAllowedOrigins = v.GetStringSlice("instrumentation.cors-allowed-origins")
	}
	if v.IsSet("instrumentation.namespace") {
		cfg.Instrumentation.Namespace = v.GetString("instrumentation.namespace")
	}
}

// ExplorerFromEnv returns DefaultExplorerConfig with EXPLORER_HARNESS_*
// environment overrides applied. Test fixtures use it to locate the binary.
func ExplorerFromEnv() *ExplorerConfig {
	cfg := DefaultConfig()
	cfg.Override(NewViper())
	return cfg.Explorer
}

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

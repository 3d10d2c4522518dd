package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"text/template"

	tmos "github.com/tendermint/explorer-harness/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

// EnsureRoot creates the root directory and writes a default config.toml if
// none exists yet.
func EnsureRoot(rootDir string) error {
	if err := tmos.EnsureDir(rootDir, defaultDirPerm); err != nil {
		return err
	}
	return writeDefaultConfigFileIfNone(rootDir)
}

// WriteConfigFile renders config using the template and writes it to
// <rootDir>/config.toml.
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFileName))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return tmos.WriteFileAtomic(path, buffer.Bytes(), 0644)
}

func writeDefaultConfigFileIfNone(rootDir string) error {
	configFilePath := filepath.Join(rootDir, defaultConfigFileName)
	if !tmos.FileExists(configFilePath) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

// Note: any changes to the comments/variables/field names
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any value below can be overridden with an environment variable named
# EXPLORER_HARNESS_<SECTION>_<KEY>, e.g. EXPLORER_HARNESS_EXPLORER_LOGS_DIR,
# or with the matching command line flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Output level for logging: debug | info | warn | error
log-level = "{{ .LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .LogFormat }}"

#######################################################
###          Explorer Configuration Options         ###
#######################################################
[explorer]

# Path to the explorer binary, or its name on $PATH
binary = "{{ js .Explorer.Binary }}"

# Host the explorer binds to; the port is picked at launch time
listen-host = "{{ .Explorer.ListenHost }}"

# Pause between two readiness probes of a freshly launched explorer
bootstrap-interval = "{{ .Explorer.BootstrapInterval }}"

# Number of readiness probes before giving up waiting
bootstrap-attempts = {{ .Explorer.BootstrapAttempts }}

# Timeout of a single query round trip; "0s" disables it
query-timeout = "{{ .Explorer.QueryTimeout }}"

# Directory receiving explorer.log when a test fails; empty disables it
logs-dir = "{{ js .Explorer.LogsDir }}"

# Print every query and response
verbose = {{ .Explorer.Verbose }}

#######################################################
###           Schema Configuration Options          ###
#######################################################
[schema]

# Checked-in explorer GraphQL schema, relative to the repository root
expected = "{{ js .Schema.Expected }}"

#######################################################
###       Instrumentation Configuration Options     ###
#######################################################
[instrumentation]

# When true, Prometheus metrics are served under /metrics on
# PrometheusListenAddr.
# Check out the documentation for the list of available metrics.
prometheus = {{ .Instrumentation.Prometheus }}

# Address to listen for Prometheus collector(s) connections
prometheus-listen-addr = "{{ .Instrumentation.PrometheusListenAddr }}"

# Maximum number of simultaneous connections.
# If you want to accept a larger number than the default, make sure
# you increase your OS limits.
# 0 - unlimited.
max-open-connections = {{ .Instrumentation.MaxOpenConnections }}

# A list of origins a browser may fetch metrics from.
# Use '["*"]' to allow any origin.
cors-allowed-origins = [{{ range $i, $o := .Instrumentation.CORSAllowedOrigins }}{{ if $i }}, {{ end }}"{{ $o }}"{{ end }}]

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`

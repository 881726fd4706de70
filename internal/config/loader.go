package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Loader assembles Settings from the standard sources in precedence order:
// built-in defaults, then the first config file found, then environment
// variables. CLI flag overrides are applied by the caller afterwards, and
// Validate runs last on the final result.
type Loader struct {
	settings    *Settings
	configPaths []string
	envPrefix   string
	envFile     string
}

// NewLoader creates a configuration loader with the default search paths.
func NewLoader() *Loader {
	return &Loader{
		settings:  DefaultSettings(),
		envPrefix: "REPLWATCH_",
		envFile:   "/etc/replwatch/replwatch.env",
		configPaths: []string{
			"/etc/replwatch/replwatch.yml",
			"/etc/replwatch/replwatch.yaml",
			"./replwatch.yml",
			"./replwatch.yaml",
		},
	}
}

// SetConfigPath puts a custom config path at the front of the search list.
func (l *Loader) SetConfigPath(path string) {
	l.configPaths = append([]string{path}, l.configPaths...)
}

// Load resolves Settings from all sources. Validation is left to the
// caller so flag overrides can still be layered on top.
func (l *Loader) Load() (*Settings, error) {
	if err := l.loadFromFile(); err != nil {
		return nil, err
	}
	l.loadEnvFile()
	l.loadFromEnv()
	return l.settings, nil
}

// loadFromFile applies the first config file found on the search path. A
// missing file is fine; an unreadable or malformed one is not, because a
// check run driven by half-applied configuration would alert on garbage.
func (l *Loader) loadFromFile() error {
	for _, path := range l.configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, l.settings); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded configuration file")
		return nil
	}
	return nil
}

// loadEnvFile folds an optional env file into the process environment so
// loadFromEnv picks its values up. Values already set in the real
// environment win.
func (l *Loader) loadEnvFile() {
	if path := os.Getenv(l.envPrefix + "ENV_FILE"); path != "" {
		l.envFile = path
	}
	if _, err := os.Stat(l.envFile); err != nil {
		return
	}
	if err := godotenv.Load(l.envFile); err != nil {
		log.Warn().Err(err).Str("path", l.envFile).Msg("Failed to load env file")
	}
}

func (l *Loader) loadFromEnv() {
	s := l.settings
	l.envString("SOA_DIR", &s.SOADir)
	l.envString("CLUSTER", &s.Cluster)
	l.envString("DECLARATION_SOURCE", &s.DeclarationSource)
	l.envString("NOMAD_ADDR", &s.NomadAddr)
	l.envString("DISCOVERY_BACKEND", &s.DiscoveryBackend)
	l.envString("SYNAPSE_ADDR", &s.SynapseAddr)
	l.envString("CONSUL_ADDR", &s.ConsulAddr)
	l.envInt("WARN_PCT", &s.WarnPct)
	l.envInt("CRIT_PCT", &s.CritPct)
	l.envString("TRANSPORT_URL", &s.TransportURL)
	l.envBool("DRY_RUN", &s.DryRun)
	l.envInt("WORKERS", &s.Workers)
	l.envString("PUSH_GATEWAY", &s.PushGateway)
	l.envString("LOG_LEVEL", &s.LogLevel)
	l.envString("LOG_FORMAT", &s.LogFormat)
}

func (l *Loader) envString(key string, target *string) {
	if value, ok := os.LookupEnv(l.envPrefix + key); ok {
		*target = value
	}
}

func (l *Loader) envInt(key string, target *int) {
	value, ok := os.LookupEnv(l.envPrefix + key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Str("key", l.envPrefix+key).Str("value", value).Msg("Ignoring non-integer environment override")
		return
	}
	*target = parsed
}

func (l *Loader) envBool(key string, target *bool) {
	value, ok := os.LookupEnv(l.envPrefix + key)
	if !ok {
		return
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		log.Warn().Str("key", l.envPrefix+key).Str("value", value).Msg("Ignoring non-boolean environment override")
		return
	}
	*target = parsed
}

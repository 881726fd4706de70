package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := DefaultSettings()
	s.TransportURL = "http://alerts.example.com/events"
	s.CritPct = 50
	return s
}

func TestValidateDefaults(t *testing.T) {
	s := validSettings()
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"negative warn", func(s *Settings) { s.WarnPct = -1 }},
		{"negative crit", func(s *Settings) { s.CritPct = -5 }},
		{"zero workers", func(s *Settings) { s.Workers = 0 }},
		{"unknown discovery backend", func(s *Settings) { s.DiscoveryBackend = "zookeeper" }},
		{"unknown declaration source", func(s *Settings) { s.DeclarationSource = "mesos" }},
		{"missing soa dir", func(s *Settings) { s.SOADir = "" }},
		{"missing transport url", func(s *Settings) { s.TransportURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidateAllowsInvertedThresholds(t *testing.T) {
	// crit above warn is suspicious but legal; it only logs a warning.
	s := validSettings()
	s.WarnPct = 75
	s.CritPct = 90
	assert.NoError(t, s.Validate())
}

func TestValidateDryRunNeedsNoTransport(t *testing.T) {
	s := validSettings()
	s.TransportURL = ""
	s.DryRun = true
	assert.NoError(t, s.Validate())
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "replwatch.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
soaDir: /from/file
warnPct: 60
critPct: 40
transportUrl: http://file.example.com/events
`), 0o644))

	t.Setenv("REPLWATCH_WARN_PCT", "65")
	t.Setenv("REPLWATCH_CLUSTER", "east")

	loader := NewLoader()
	loader.configPaths = []string{configPath}
	loader.envFile = filepath.Join(dir, "no-such.env")

	settings, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "/from/file", settings.SOADir)
	assert.Equal(t, 65, settings.WarnPct, "environment overrides the file")
	assert.Equal(t, 40, settings.CritPct, "file overrides the default")
	assert.Equal(t, "east", settings.Cluster)
	assert.Equal(t, "synapse", settings.DiscoveryBackend, "defaults survive untouched")
}

func TestLoaderIgnoresBadEnvValues(t *testing.T) {
	t.Setenv("REPLWATCH_WARN_PCT", "lots")
	t.Setenv("REPLWATCH_DRY_RUN", "affirmative")

	loader := NewLoader()
	loader.configPaths = nil
	loader.envFile = filepath.Join(t.TempDir(), "no-such.env")

	settings, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 75, settings.WarnPct)
	assert.False(t, settings.DryRun)
}

func TestLoaderMalformedFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "replwatch.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("{{ not yaml"), 0o644))

	loader := NewLoader()
	loader.configPaths = []string{configPath}

	_, err := loader.Load()
	assert.Error(t, err)
}

func TestLoaderEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "replwatch.env")
	require.NoError(t, os.WriteFile(envPath, []byte("REPLWATCH_SYNAPSE_ADDR=proxy:3212\n"), 0o644))

	loader := NewLoader()
	loader.configPaths = nil
	loader.envFile = envPath

	settings, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "proxy:3212", settings.SynapseAddr)

	os.Unsetenv("REPLWATCH_SYNAPSE_ADDR")
}

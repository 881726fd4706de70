package config

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Discovery backends and declaration sources understood by the checker.
const (
	DiscoverySynapse = "synapse"
	DiscoveryConsul  = "consul"

	DeclarationsSOA   = "soa"
	DeclarationsNomad = "nomad"
)

// Settings is the full runtime configuration for one check invocation.
type Settings struct {
	// SOADir is the root of the per-service configuration tree.
	SOADir string `yaml:"soaDir"`
	// Cluster selects which instances-<cluster>.yaml file declares the
	// expected instance counts.
	Cluster string `yaml:"cluster"`

	// DeclarationSource is where expected instance counts come from:
	// "soa" (the config tree) or "nomad" (live job task-group counts).
	DeclarationSource string `yaml:"declarationSource"`
	NomadAddr         string `yaml:"nomadAddr"`

	// DiscoveryBackend is where available backend counts come from:
	// "synapse" (HAProxy CSV statistics) or "consul" (health API).
	DiscoveryBackend string `yaml:"discoveryBackend"`
	SynapseAddr      string `yaml:"synapseAddr"`
	ConsulAddr       string `yaml:"consulAddr"`

	// WarnPct and CritPct are the two threshold percentages. They are
	// independent values; operational intent is CritPct <= WarnPct but
	// that is validated with a warning, never assumed.
	WarnPct int `yaml:"warnPct"`
	CritPct int `yaml:"critPct"`

	// TransportURL is the alert transport endpoint. DryRun replaces the
	// transport with a log-only sink.
	TransportURL string `yaml:"transportUrl"`
	DryRun       bool   `yaml:"dryRun"`

	// Workers bounds the per-namespace fan-out.
	Workers int `yaml:"workers"`

	// PushGateway, when set, receives the run's metrics after completion.
	PushGateway string `yaml:"pushGateway"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// DefaultSettings returns the built-in defaults, before any file, env, or
// flag overrides are applied.
func DefaultSettings() *Settings {
	return &Settings{
		SOADir:            "/etc/replwatch/services",
		Cluster:           "main",
		DeclarationSource: DeclarationsSOA,
		DiscoveryBackend:  DiscoverySynapse,
		SynapseAddr:       "localhost:3212",
		ConsulAddr:        "localhost:8500",
		NomadAddr:         "http://localhost:4646",
		WarnPct:           75,
		CritPct:           90,
		Workers:           8,
		LogLevel:          "info",
		LogFormat:         "auto",
	}
}

// Validate checks the final configuration. Threshold inversion (crit above
// warn) is legal but almost always a mistake, so it logs a warning instead
// of guessing which value the operator meant.
func (s *Settings) Validate() error {
	if s.SOADir == "" && s.DeclarationSource == DeclarationsSOA {
		return fmt.Errorf("soa dir is required when declarations come from the config tree")
	}
	if s.WarnPct < 0 || s.CritPct < 0 {
		return fmt.Errorf("thresholds must be non-negative: warn=%d crit=%d", s.WarnPct, s.CritPct)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", s.Workers)
	}
	switch s.DeclarationSource {
	case DeclarationsSOA, DeclarationsNomad:
	default:
		return fmt.Errorf("unknown declaration source %q", s.DeclarationSource)
	}
	switch s.DiscoveryBackend {
	case DiscoverySynapse, DiscoveryConsul:
	default:
		return fmt.Errorf("unknown discovery backend %q", s.DiscoveryBackend)
	}
	if !s.DryRun && s.TransportURL == "" {
		return fmt.Errorf("transport url is required unless running with dry-run")
	}
	if s.CritPct > s.WarnPct {
		log.Warn().
			Int("warnPct", s.WarnPct).
			Int("critPct", s.CritPct).
			Msg("Critical threshold is above warning threshold; every warning-range namespace will page")
	}
	return nil
}

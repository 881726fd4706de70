package main

import (
	"fmt"

	"github.com/replwatch/replwatch/internal/config"
	"github.com/replwatch/replwatch/internal/discovery"
	"github.com/replwatch/replwatch/internal/nomad"
	"github.com/replwatch/replwatch/internal/notifications"
	"github.com/replwatch/replwatch/internal/replication"
)

// buildChecker assembles the checker's collaborators from settings. The
// config store always serves alert routing; declarations and availability
// come from whichever backends the settings select.
func buildChecker(settings *config.Settings, store *config.Store) (*replication.Checker, error) {
	var declarations replication.DeclarationSource
	switch settings.DeclarationSource {
	case config.DeclarationsNomad:
		source, err := nomad.NewSource(settings.NomadAddr)
		if err != nil {
			return nil, fmt.Errorf("nomad declaration source: %w", err)
		}
		declarations = source
	default:
		declarations = store
	}

	var client discovery.Client
	switch settings.DiscoveryBackend {
	case config.DiscoveryConsul:
		consul, err := discovery.NewConsulClient(settings.ConsulAddr)
		if err != nil {
			return nil, fmt.Errorf("consul discovery client: %w", err)
		}
		client = consul
	default:
		client = discovery.NewSynapseClient(settings.SynapseAddr)
	}

	var transport notifications.Transport
	if settings.DryRun {
		transport = notifications.LogTransport{}
	} else {
		transport = notifications.NewWebhookTransport(settings.TransportURL, nil)
	}

	return replication.NewChecker(declarations, client, store, transport, replication.Options{
		WarnPct: settings.WarnPct,
		CritPct: settings.CritPct,
		Workers: settings.Workers,
	}), nil
}

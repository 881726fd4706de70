package discovery

import (
	"context"
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog/log"

	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/models"
)

// ConsulClient reads backend availability from a Consul agent. Backends
// register under the encoded namespace ID as their Consul service name; an
// instance whose checks all pass counts as available.
type ConsulClient struct {
	api *consulapi.Client
}

// NewConsulClient creates a client against the agent at addr.
func NewConsulClient(addr string) (*ConsulClient, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &ConsulClient{api: client}, nil
}

// AvailableBackends queries health entries for every requested namespace.
// A namespace with no registrations at all stays absent from the result;
// one with registrations but failing checks is present with the count of
// passing instances (possibly zero).
func (c *ConsulClient) AvailableBackends(ctx context.Context, namespaces []string) (models.AvailabilityMap, error) {
	opts := (&consulapi.QueryOptions{}).WithContext(ctx)

	counts := make(models.AvailabilityMap)
	for _, name := range namespaces {
		entries, _, err := c.api.Health().Service(name, "", false, opts)
		if err != nil {
			return nil, errors.WrapDiscoveryError("query_consul_health", err)
		}
		if len(entries) == 0 {
			continue
		}
		passing := 0
		for _, entry := range entries {
			if aggregateChecks(entry.Checks) == consulapi.HealthPassing {
				passing++
			}
		}
		counts[name] = passing
	}

	log.Debug().Int("namespaces", len(counts)).Msg("Fetched availability snapshot from consul")
	return counts, nil
}

// aggregateChecks reduces an instance's checks to its worst status.
func aggregateChecks(checks consulapi.HealthChecks) string {
	worst := consulapi.HealthPassing
	for _, check := range checks {
		switch check.Status {
		case consulapi.HealthCritical:
			return consulapi.HealthCritical
		case consulapi.HealthWarning:
			worst = consulapi.HealthWarning
		}
	}
	return worst
}

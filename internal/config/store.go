package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/replwatch/replwatch/internal/errors"
	"github.com/replwatch/replwatch/internal/models"
)

// Store reads per-service configuration from a directory tree:
//
//	<dir>/<service>/instances-<cluster>.yaml  declared instances
//	<dir>/<service>/namespaces.yaml           discovery namespaces
//	<dir>/<service>/monitoring.yaml           alert routing
//
// Every read produces a fresh snapshot; the store holds no state between
// check runs.
type Store struct {
	dir     string
	cluster string
}

// NewStore creates a config store rooted at dir for the given cluster.
func NewStore(dir, cluster string) *Store {
	return &Store{dir: dir, cluster: cluster}
}

// instanceSpec is the YAML shape of one declared instance.
type instanceSpec struct {
	Instances           int    `yaml:"instances"`
	RegisteredNamespace string `yaml:"registered_namespace"`
}

// namespaceSpec is the YAML shape of one discovery namespace entry. Only
// presence matters to the checker; the proxy settings belong to the
// discovery layer itself.
type namespaceSpec struct {
	ProxyPort int `yaml:"proxy_port"`
}

// routeSpec is the YAML shape of monitoring.yaml.
type routeSpec struct {
	Team              string `yaml:"team"`
	Runbook           string `yaml:"runbook"`
	Tip               string `yaml:"tip"`
	NotificationEmail string `yaml:"notification_email"`
	Page              bool   `yaml:"page"`
}

// LoadDeclarations builds the declared-instance snapshot for the store's
// cluster. One service's unreadable or unparseable file marks only that
// service broken; a single malformed entry inside an otherwise valid file
// drops only that entry. The only fatal error is failing to read the
// config tree itself.
func (s *Store) LoadDeclarations(ctx context.Context) (*models.DeclarationSet, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read soa dir %s: %w", s.dir, err)
	}

	set := models.NewDeclarationSet()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		service := entry.Name()
		if strings.Contains(service, models.NamespaceSeparator) {
			log.Warn().Str("service", service).Msg("Skipping service directory containing the namespace separator")
			continue
		}
		s.loadServiceDeclarations(service, set)
	}
	return set, nil
}

func (s *Store) loadServiceDeclarations(service string, set *models.DeclarationSet) {
	path := filepath.Join(s.dir, service, fmt.Sprintf("instances-%s.yaml", s.cluster))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Service exists but declares nothing in this cluster.
			return
		}
		log.Warn().Err(err).Str("service", service).Msg("Service instance file unreadable; marking service unmanaged")
		set.MarkBroken(service, err)
		return
	}

	// Decode entry-by-entry so one malformed declaration never discards
	// its siblings.
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Warn().Err(err).Str("service", service).Msg("Service instance file unparseable; marking service unmanaged")
		set.MarkBroken(service, err)
		return
	}

	for instance, node := range raw {
		var spec instanceSpec
		if err := node.Decode(&spec); err != nil {
			log.Warn().Err(err).Str("service", service).Str("instance", instance).Msg("Skipping malformed instance declaration")
			continue
		}
		if spec.Instances < 0 {
			log.Warn().Str("service", service).Str("instance", instance).Int("instances", spec.Instances).Msg("Skipping declaration with negative instance count")
			continue
		}
		decl := models.InstanceDeclaration{
			Service:             service,
			Instance:            instance,
			RegisteredNamespace: spec.RegisteredNamespace,
			Instances:           spec.Instances,
		}
		if strings.Contains(decl.EffectiveNamespace(), models.NamespaceSeparator) {
			log.Warn().Str("service", service).Str("instance", instance).Msg("Skipping declaration whose namespace contains the separator")
			continue
		}
		set.Add(decl)
	}
}

// ListNamespaces returns the encoded namespace universe declared across
// the whole config tree, sorted. A service whose namespaces file is
// broken contributes nothing; that never aborts the listing.
func (s *Store) ListNamespaces() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read soa dir %s: %w", s.dir, err)
	}

	var all []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		service := entry.Name()
		if strings.Contains(service, models.NamespaceSeparator) {
			continue
		}
		path := filepath.Join(s.dir, service, "namespaces.yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Warn().Err(err).Str("service", service).Msg("Namespaces file unreadable; service excluded from the universe")
			}
			continue
		}
		var namespaces map[string]namespaceSpec
		if err := yaml.Unmarshal(data, &namespaces); err != nil {
			log.Warn().Err(err).Str("service", service).Msg("Namespaces file unparseable; service excluded from the universe")
			continue
		}
		for namespace := range namespaces {
			if strings.Contains(namespace, models.NamespaceSeparator) {
				log.Warn().Str("service", service).Str("namespace", namespace).Msg("Skipping namespace containing the separator")
				continue
			}
			all = append(all, models.NamespaceID{Service: service, Namespace: namespace}.String())
		}
	}
	sort.Strings(all)
	return all, nil
}

// ResolveRouting looks up the alert route for a service. A missing
// monitoring file resolves to the unmanaged route; an unreadable or
// unparseable one is a per-service structural error for the caller to
// attribute.
func (s *Store) ResolveRouting(service string) (models.AlertRoute, error) {
	path := filepath.Join(s.dir, service, "monitoring.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.AlertRoute{}, nil
		}
		return models.AlertRoute{}, errors.WrapConfigError("resolve_routing", service, err)
	}
	var spec routeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return models.AlertRoute{}, errors.WrapConfigError("resolve_routing", service, err)
	}
	return models.AlertRoute{
		Team:              spec.Team,
		Runbook:           spec.Runbook,
		Tip:               spec.Tip,
		NotificationEmail: spec.NotificationEmail,
		Page:              spec.Page,
	}, nil
}

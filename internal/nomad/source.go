package nomad

import (
	"context"
	"fmt"
	"strings"

	nomadapi "github.com/hashicorp/nomad/api"
	"github.com/rs/zerolog/log"

	"github.com/replwatch/replwatch/internal/models"
)

// Source derives instance declarations from live Nomad job definitions,
// for clusters where the orchestrator itself is the source of truth for
// expected counts instead of a config tree. Each service job maps to an
// owning service, each task group to one declared instance, and the group
// count to the declared instance count. A group's meta key
// "registered_namespace" overrides the namespace its backends register
// under, mirroring the config-tree declaration format.
type Source struct {
	api *nomadapi.Client
}

// NewSource creates a declaration source against the Nomad API at addr.
func NewSource(addr string) (*Source, error) {
	cfg := nomadapi.DefaultConfig()
	cfg.Address = addr

	client, err := nomadapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("nomad client: %w", err)
	}
	return &Source{api: client}, nil
}

// LoadDeclarations snapshots declared instance counts from every service
// job. A single job that cannot be fetched marks only its service broken;
// failing to list jobs at all is fatal to the run.
func (s *Source) LoadDeclarations(ctx context.Context) (*models.DeclarationSet, error) {
	opts := (&nomadapi.QueryOptions{}).WithContext(ctx)

	stubs, _, err := s.api.Jobs().List(opts)
	if err != nil {
		return nil, fmt.Errorf("list nomad jobs: %w", err)
	}

	set := models.NewDeclarationSet()
	for _, stub := range stubs {
		if stub.Type != nomadapi.JobTypeService {
			continue
		}
		job, _, err := s.api.Jobs().Info(stub.ID, opts)
		if err != nil {
			log.Warn().Err(err).Str("job", stub.ID).Msg("Nomad job unreadable; marking service unmanaged")
			set.MarkBroken(stub.Name, err)
			continue
		}
		for _, decl := range declarationsFromJob(job) {
			set.Add(decl)
		}
	}
	return set, nil
}

// declarationsFromJob maps one Nomad job onto instance declarations. Task
// groups with malformed names or namespaces are dropped individually.
func declarationsFromJob(job *nomadapi.Job) []models.InstanceDeclaration {
	if job == nil || job.Name == nil {
		return nil
	}
	service := *job.Name
	if strings.Contains(service, models.NamespaceSeparator) {
		log.Warn().Str("job", service).Msg("Skipping nomad job whose name contains the namespace separator")
		return nil
	}

	var decls []models.InstanceDeclaration
	for _, group := range job.TaskGroups {
		if group.Name == nil {
			continue
		}
		count := 0
		if group.Count != nil {
			count = *group.Count
		}
		if count < 0 {
			log.Warn().Str("job", service).Str("group", *group.Name).Int("count", count).Msg("Skipping task group with negative count")
			continue
		}
		decl := models.InstanceDeclaration{
			Service:   service,
			Instance:  *group.Name,
			Instances: count,
		}
		if ns, ok := group.Meta["registered_namespace"]; ok {
			decl.RegisteredNamespace = ns
		}
		if strings.Contains(decl.EffectiveNamespace(), models.NamespaceSeparator) {
			log.Warn().Str("job", service).Str("group", *group.Name).Msg("Skipping task group whose namespace contains the separator")
			continue
		}
		decls = append(decls, decl)
	}
	return decls
}
